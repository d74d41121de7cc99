// internal/games/games_test.go
package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookupCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltin(r)

	d, err := r.Lookup("Liars-Dice")
	require.NoError(t, err)
	assert.Equal(t, "liars-dice", d.Name)
	assert.Equal(t, 8, d.MaxPlayers)
	assert.True(t, d.TurnOrder)
}

func TestRegistryLookupUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("monopoly")
	assert.ErrorIs(t, err, ErrUnknownGame)
}

func TestCloneOptionsDoesNotAlias(t *testing.T) {
	d := Descriptor{
		Name:           "x",
		DefaultOptions: map[string]any{"speed": float64(1)},
	}
	opts := d.CloneOptions()
	opts["speed"] = float64(9)
	assert.Equal(t, float64(1), d.DefaultOptions["speed"])
}

func TestBuiltinDescriptorsAreWellFormed(t *testing.T) {
	for _, d := range Builtin() {
		assert.NotEmpty(t, d.Name)
		assert.Greater(t, d.MaxPlayers, 1)
		assert.NotNil(t, d.DefaultOptions)
		for k, v := range d.DefaultOptions {
			switch v.(type) {
			case bool, float64, string:
			default:
				t.Errorf("game %s option %s has unsupported type %T", d.Name, k, v)
			}
		}
	}
}
