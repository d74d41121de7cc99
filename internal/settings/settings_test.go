// internal/settings/settings_test.go
package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := Defaults()
	assert.Equal(t, "!", s.Prefix())
	assert.Empty(t, s.Whitelist())
	assert.True(t, s.ChannelAllowed("any-channel"))
}

func TestCloneIsDeep(t *testing.T) {
	s := Defaults()
	s[KeyChannelWhitelist] = []string{"c1"}

	clone := s.Clone()
	clone[KeyChannelWhitelist].([]string)[0] = "c2"
	assert.Equal(t, []string{"c1"}, s.Whitelist())
}

func TestWhitelistRestrictsChannels(t *testing.T) {
	s := Defaults()
	s[KeyChannelWhitelist] = []string{"c1", "c2"}

	assert.True(t, s.ChannelAllowed("c1"))
	assert.False(t, s.ChannelAllowed("c3"))
}

func TestWhitelistSurvivesJSONRoundTrip(t *testing.T) {
	s := Defaults()
	s[KeyChannelWhitelist] = []string{"c1"}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded Settings
	require.NoError(t, json.Unmarshal(data, &decoded))

	// JSON turns string slices into []any; Whitelist handles both.
	assert.Equal(t, []string{"c1"}, decoded.Whitelist())
	assert.True(t, decoded.ChannelAllowed("c1"))
	assert.False(t, decoded.ChannelAllowed("c9"))
}

func TestPrefixFallsBackOnBadValue(t *testing.T) {
	s := Settings{KeyPrefix: 42}
	assert.Equal(t, "!", s.Prefix())
}
