// internal/setup/registry_test.go
package setup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateAndGet(t *testing.T) {
	r := NewRegistry()
	s := &Session{}
	require.NoError(t, r.Create("g1", "c1", s))

	got, ok := r.Session("g1", "c1")
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestRegistryRejectsSecondSession(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Create("g1", "c1", &Session{}))
	assert.ErrorIs(t, r.Create("g1", "c1", &Session{}), ErrChannelActive)

	// A different channel in the same guild is fine.
	assert.NoError(t, r.Create("g1", "c2", &Session{}))
}

func TestRegistryRemoveCollectsEmptyGuild(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Create("g1", "c1", &Session{}))
	require.NoError(t, r.Create("g1", "c2", &Session{}))

	r.Remove("g1", "c1")
	assert.Equal(t, 1, r.Len())

	r.Remove("g1", "c2")
	assert.Equal(t, 0, r.Len())

	// Removing from a collected guild is a no-op.
	r.Remove("g1", "c1")
}

func TestRegistryReplaceKeepsSlotHeld(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Create("g1", "c1", &Session{}))

	type running struct{ name string }
	r.Replace("g1", "c1", &running{name: "coup"})

	// The slot is still occupied, but no longer by a session.
	_, isSession := r.Session("g1", "c1")
	assert.False(t, isSession)
	occupant, ok := r.Get("g1", "c1")
	require.True(t, ok)
	assert.Equal(t, "coup", occupant.(*running).name)

	assert.ErrorIs(t, r.Create("g1", "c1", &Session{}), ErrChannelActive)
}
