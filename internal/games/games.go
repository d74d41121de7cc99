// internal/games/games.go
package games

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parlorbot/parlor/internal/chat"
)

// ErrUnknownGame is returned by Registry.Lookup for an unregistered name.
var ErrUnknownGame = fmt.Errorf("games: unknown game")

// Descriptor is the static metadata a setup session consumes. Option values
// are bool, float64 or string; the value's type is the option's schema.
type Descriptor struct {
	Name           string
	MaxPlayers     int
	DefaultOptions map[string]any
	TurnOrder      bool
}

// CloneOptions returns a fresh copy of the default option set, so sessions
// never alias the descriptor's map.
func (d Descriptor) CloneOptions() map[string]any {
	opts := make(map[string]any, len(d.DefaultOptions))
	for k, v := range d.DefaultOptions {
		opts[k] = v
	}
	return opts
}

// Snapshot is the immutable hand-off from a finished setup to the game
// instantiation path: session id, effective player order, final options.
type Snapshot struct {
	SessionID uuid.UUID
	Players   []chat.User
	Options   map[string]any
}

// Instance is a running game occupying a (guild, channel) slot in the
// session registry after a lobby starts.
type Instance struct {
	Descriptor Descriptor
	Snapshot   Snapshot
	StartedAt  time.Time
}

// NewInstance builds the running-game handle for a completed setup.
func NewInstance(d Descriptor, snap Snapshot) *Instance {
	return &Instance{Descriptor: d, Snapshot: snap, StartedAt: time.Now()}
}

// Registry holds the loadable game descriptors, keyed by lowercased name.
type Registry struct {
	mu    sync.Mutex
	games map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{games: make(map[string]Descriptor)}
}

// Register adds or overwrites a descriptor under its lowercased name.
func (r *Registry) Register(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[strings.ToLower(d.Name)] = d
}

// Lookup resolves a descriptor by name, case-insensitively.
func (r *Registry) Lookup(name string) (Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.games[strings.ToLower(name)]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownGame, name)
	}
	return d, nil
}

// Names returns all registered game names, for listing.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.games))
	for _, d := range r.games {
		names = append(names, d.Name)
	}
	return names
}
