// internal/setup/registry.go
package setup

import (
	"errors"
	"sync"
)

// ErrChannelActive is returned by Create when the (guild, channel) slot is
// already held by a setup session or a running game.
var ErrChannelActive = errors.New("setup: channel already has an active game")

// Registry tracks the single occupant of each (guild, channel) pair: a
// *Session while setup runs, then the running-game value that replaces it
// on start. Guild sub-maps are garbage-collected when they empty.
type Registry struct {
	mu     sync.Mutex
	guilds map[string]map[string]any
}

func NewRegistry() *Registry {
	return &Registry{guilds: make(map[string]map[string]any)}
}

// Create claims the slot for a new setup session.
func (r *Registry) Create(guildID, channelID string, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	channels, ok := r.guilds[guildID]
	if !ok {
		channels = make(map[string]any)
		r.guilds[guildID] = channels
	}
	if _, exists := channels[channelID]; exists {
		return ErrChannelActive
	}
	channels[channelID] = s
	return nil
}

// Get returns whatever occupies the slot, if anything.
func (r *Registry) Get(guildID, channelID string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	channels, ok := r.guilds[guildID]
	if !ok {
		return nil, false
	}
	occupant, ok := channels[channelID]
	return occupant, ok
}

// Session returns the occupant if it is a live setup session.
func (r *Registry) Session(guildID, channelID string) (*Session, bool) {
	occupant, ok := r.Get(guildID, channelID)
	if !ok {
		return nil, false
	}
	s, ok := occupant.(*Session)
	return s, ok
}

// Replace swaps the slot's occupant, keeping the key held. Used on start to
// transition the key from lobby to running game.
func (r *Registry) Replace(guildID, channelID string, occupant any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	channels, ok := r.guilds[guildID]
	if !ok {
		channels = make(map[string]any)
		r.guilds[guildID] = channels
	}
	channels[channelID] = occupant
}

// Remove vacates the slot and drops the guild sub-map once it empties.
func (r *Registry) Remove(guildID, channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	channels, ok := r.guilds[guildID]
	if !ok {
		return
	}
	delete(channels, channelID)
	if len(channels) == 0 {
		delete(r.guilds, guildID)
	}
}

// Len reports how many slots are held across all guilds.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, channels := range r.guilds {
		n += len(channels)
	}
	return n
}
