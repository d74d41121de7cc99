// internal/setup/session.go
package setup

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/parlorbot/parlor/internal/chat"
	"github.com/parlorbot/parlor/internal/games"
)

// State is the lifecycle phase of a setup session. Active is the only
// non-terminal state; no transitions leave a terminal state.
type State int

const (
	StateActive State = iota
	StateStarted
	StateCancelled
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateStarted:
		return "started"
	case StateCancelled:
		return "cancelled"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

const (
	// DefaultSetupTimeout is how long a lobby may sit idle before it
	// cancels itself. Re-armed on every accepted subcommand.
	DefaultSetupTimeout = 120 * time.Second
	// DefaultInviteTimeout is how long an invitee has to reply "accept".
	DefaultInviteTimeout = 30 * time.Second
)

// StartFunc instantiates the running game for a finished setup and returns
// the value that replaces the session in the registry.
type StartFunc func(ctx context.Context, snap games.Snapshot) (any, error)

// Config carries everything a new session needs.
type Config struct {
	Messenger  chat.Messenger
	Registry   *Registry
	Logger     *log.Logger
	Descriptor games.Descriptor
	Host       chat.User
	GuildID    string
	ChannelID  string
	Prefix     string
	OnStart    StartFunc

	// Zero values fall back to the defaults above. Tests shorten these.
	SetupTimeout  time.Duration
	InviteTimeout time.Duration
}

// Session holds all mutable state for one pre-game lobby setup. Every
// mutation path (subcommands, invite acceptances, deadline expiry) takes
// the session mutex, so invariants hold under concurrent invite races.
type Session struct {
	ID         uuid.UUID
	GuildID    string
	ChannelID  string
	Host       chat.User
	Descriptor games.Descriptor
	Prefix     string
	OnStart    StartFunc

	SetupTimeout  time.Duration
	InviteTimeout time.Duration

	messenger chat.Messenger
	registry  *Registry
	log       *log.Entry

	mu          sync.Mutex
	state       State
	players     []chat.User
	options     map[string]any
	turnOrder   []chat.User
	randomTurns bool
	deadline    *time.Timer
	display     chat.MessageRef
	hasDisplay  bool
}

// Create builds a session for the host, claims the (guild, channel) slot in
// the registry, sends the initial display message and arms the inactivity
// deadline. Returns ErrChannelActive if the slot is taken.
func Create(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.SetupTimeout == 0 {
		cfg.SetupTimeout = DefaultSetupTimeout
	}
	if cfg.InviteTimeout == 0 {
		cfg.InviteTimeout = DefaultInviteTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	s := &Session{
		ID:            uuid.New(),
		GuildID:       cfg.GuildID,
		ChannelID:     cfg.ChannelID,
		Host:          cfg.Host,
		Descriptor:    cfg.Descriptor,
		Prefix:        cfg.Prefix,
		OnStart:       cfg.OnStart,
		SetupTimeout:  cfg.SetupTimeout,
		InviteTimeout: cfg.InviteTimeout,
		messenger:     cfg.Messenger,
		registry:      cfg.Registry,
		state:         StateActive,
		players:       []chat.User{cfg.Host},
		options:       cfg.Descriptor.CloneOptions(),
	}
	s.log = logger.WithFields(log.Fields{
		"session": s.ID,
		"game":    cfg.Descriptor.Name,
		"channel": cfg.ChannelID,
	})
	if cfg.Descriptor.TurnOrder {
		s.turnOrder = []chat.User{cfg.Host}
	}

	if err := cfg.Registry.Create(cfg.GuildID, cfg.ChannelID, s); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ref, err := s.messenger.Send(ctx, s.ChannelID, Render(s.view()))
	if err != nil {
		s.log.WithError(err).Error("failed to send setup message")
	} else {
		s.display = ref
		s.hasDisplay = true
	}
	s.armDeadline()
	s.log.Info("setup session created")
	return s, nil
}

// HandleCommand dispatches one tokenized subcommand against the session.
// Accepted subcommands re-render the display and re-arm the deadline;
// start and cancel terminate the session instead.
func (s *Session) HandleCommand(ctx context.Context, msg chat.IncomingMessage, args []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	if len(args) == 0 {
		s.send(ctx, fmt.Sprintf("Usage: `%ssetupgame <invite|option|turnorder|resend|start|cancel>`", s.Prefix))
		return
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "invite":
		s.handleInvite(ctx, msg)
	case "option", "set":
		s.handleOption(ctx, rest)
	case "turnorder", "turns":
		s.handleTurnOrder(ctx, msg, rest)
	case "resend":
		s.handleResend(ctx)
	case "start":
		s.handleStart(ctx)
		return
	case "cancel":
		s.handleCancel(ctx)
		return
	}

	s.armDeadline()
}

// handleInvite validates capacity and spawns one acceptance race per newly
// mentioned user. Lock held.
func (s *Session) handleInvite(ctx context.Context, msg chat.IncomingMessage) {
	limit := s.Descriptor.MaxPlayers
	if len(s.players) == limit {
		s.send(ctx, fmt.Sprintf("You've already hit the player limit for this game! (Player limit: %d)", limit))
		return
	}
	if len(s.players)+len(msg.Mentions) > limit {
		s.send(ctx, fmt.Sprintf("You've invited too many players! (Player limit: %d)\nPlease invite less players.", limit))
		return
	}

	for _, u := range msg.Mentions {
		if indexOf(s.players, u.ID) >= 0 {
			continue
		}
		go s.awaitAccept(ctx, u)
	}
	s.send(ctx, `Users have been invited! The relevant user(s) must type "accept" to join the game within 30 seconds.`)
}

// handleOption coerces and overwrites one game option. Lock held.
func (s *Session) handleOption(ctx context.Context, args []string) {
	if len(s.Descriptor.DefaultOptions) == 0 {
		s.send(ctx, "No custom options are available for this game!")
		return
	}
	if len(args) < 2 {
		s.send(ctx, fmt.Sprintf("Usage: `%ssetupgame option <name> <value>`", s.Prefix))
		return
	}

	key := args[0]
	current, ok := s.options[key]
	if !ok {
		s.send(ctx, fmt.Sprintf("The game option `%s` was not found for this game!", key))
		return
	}

	value, err := Coerce(current, args[1:])
	if errors.Is(err, ErrUnsupportedType) {
		s.log.WithField("option", key).WithError(err).Error("option value has unsupported type")
		s.send(ctx, "Something went wrong while setting that option. This has been reported.")
		return
	}
	if err != nil {
		s.send(ctx, fmt.Sprintf("Could not set `%s`: %v.", key, err))
		return
	}

	s.options[key] = value
	s.redraw(ctx)
}

// handleTurnOrder toggles random mode or repositions a mentioned player.
// Lock held.
func (s *Session) handleTurnOrder(ctx context.Context, msg chat.IncomingMessage, args []string) {
	if !s.Descriptor.TurnOrder {
		s.send(ctx, "This game does not have turn orders!")
		return
	}

	if len(args) > 0 && args[0] == "random" {
		s.randomTurns = !s.randomTurns
		s.send(ctx, fmt.Sprintf("Random turn order has been toggled to: `%t`.", s.randomTurns))
		s.redraw(ctx)
		return
	}
	if s.randomTurns {
		s.send(ctx, "Random turn order is currently on - please turn it off to enable manual turn setting.")
		return
	}
	if len(msg.Mentions) == 0 {
		s.send(ctx, "You have not mentioned any player to change the position of!")
		return
	}

	user := msg.Mentions[0]
	if indexOf(s.turnOrder, user.ID) < 0 {
		s.send(ctx, "That user could not be found in the players list! Have you invited them yet?")
		return
	}

	pos, raw, ok := firstPosition(args)
	if !ok || pos < 1 || pos > len(s.players) {
		s.send(ctx, fmt.Sprintf("Position `%s` is invalid! Did you order your arguments correctly?", raw))
		return
	}

	s.turnOrder = Reposition(s.turnOrder, user, pos)
	s.redraw(ctx)
}

// handleResend deletes the old display message and posts a fresh render.
// Lock held.
func (s *Session) handleResend(ctx context.Context) {
	if s.hasDisplay {
		if err := s.messenger.Delete(ctx, s.display); err != nil {
			s.log.WithError(err).Warn("failed to delete setup message")
		}
	}
	ref, err := s.messenger.Send(ctx, s.ChannelID, Render(s.view()))
	if err != nil {
		s.log.WithError(err).Error("failed to resend setup message")
		return
	}
	s.display = ref
	s.hasDisplay = true
}

// handleStart freezes the lobby into a snapshot, hands it to the start
// hook and replaces this session with the running game in the registry.
// Lock held.
func (s *Session) handleStart(ctx context.Context) {
	s.stopDeadline()
	s.state = StateStarted
	snap := s.snapshot()

	if s.OnStart == nil {
		s.registry.Remove(s.GuildID, s.ChannelID)
		return
	}
	occupant, err := s.OnStart(ctx, snap)
	if err != nil {
		s.log.WithError(err).Error("failed to start game")
		s.send(ctx, fmt.Sprintf("Failed to start game %q. Please try again.", s.Descriptor.Name))
		s.registry.Remove(s.GuildID, s.ChannelID)
		return
	}
	s.registry.Replace(s.GuildID, s.ChannelID, occupant)
	s.log.WithField("players", len(snap.Players)).Info("setup session started game")
}

// handleCancel aborts the setup. Lock held.
func (s *Session) handleCancel(ctx context.Context) {
	s.stopDeadline()
	s.state = StateCancelled
	s.send(ctx, fmt.Sprintf("Setup for game %q has been aborted.", s.Descriptor.Name))
	s.registry.Remove(s.GuildID, s.ChannelID)
	s.log.Info("setup session cancelled")
}

// snapshot builds the immutable start hand-off: the effective player order
// (turn order when present, join order otherwise, shuffled in random mode)
// and a copy of the options. Lock held.
func (s *Session) snapshot() games.Snapshot {
	source := s.players
	if s.turnOrder != nil {
		source = s.turnOrder
	}
	order := make([]chat.User, len(source))
	copy(order, source)
	if s.turnOrder != nil && s.randomTurns {
		rand.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	opts := make(map[string]any, len(s.options))
	for k, v := range s.options {
		opts[k] = v
	}
	return games.Snapshot{SessionID: s.ID, Players: order, Options: opts}
}

// armDeadline (re)schedules the inactivity timeout. A stale timer that
// fires after being replaced is recognized by identity and ignored.
// Lock held.
func (s *Session) armDeadline() {
	if s.deadline != nil {
		s.deadline.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(s.SetupTimeout, func() { s.expire(t) })
	s.deadline = t
}

func (s *Session) stopDeadline() {
	if s.deadline != nil {
		s.deadline.Stop()
		s.deadline = nil
	}
}

// expire fires when the lobby has been idle for the full setup timeout.
func (s *Session) expire(t *time.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || s.deadline != t {
		return
	}
	s.deadline = nil
	s.state = StateTimedOut
	s.send(context.Background(), fmt.Sprintf("Setup for game %q has timed out.", s.Descriptor.Name))
	s.registry.Remove(s.GuildID, s.ChannelID)
	s.log.Info("setup session timed out")
}

// view projects the current state for rendering. Lock held.
func (s *Session) view() View {
	return View{
		Name:        s.Descriptor.Name,
		HostTag:     s.Host.Tag,
		Prefix:      s.Prefix,
		Players:     s.players,
		TurnOrder:   s.turnOrder,
		RandomTurns: s.randomTurns,
		Options:     s.options,
		HasOptions:  len(s.Descriptor.DefaultOptions) > 0,
	}
}

// redraw edits the display message in place. Lock held.
func (s *Session) redraw(ctx context.Context) {
	text := Render(s.view())
	if !s.hasDisplay {
		ref, err := s.messenger.Send(ctx, s.ChannelID, text)
		if err != nil {
			s.log.WithError(err).Error("failed to send setup message")
			return
		}
		s.display = ref
		s.hasDisplay = true
		return
	}
	if err := s.messenger.Edit(ctx, s.display, text); err != nil {
		s.log.WithError(err).Warn("failed to edit setup message")
	}
}

// send posts an informational or error reply to the setup channel.
func (s *Session) send(ctx context.Context, content string) {
	if _, err := s.messenger.Send(ctx, s.ChannelID, content); err != nil {
		s.log.WithError(err).Warn("failed to send message")
	}
}

// firstPosition finds the 1-based position argument, skipping mention
// tokens. Returns the raw token for error reporting.
func firstPosition(args []string) (int, string, bool) {
	for _, a := range args {
		if strings.HasPrefix(a, "<@") {
			continue
		}
		n, err := strconv.Atoi(a)
		return n, a, err == nil
	}
	return 0, "", false
}

// State returns the session's lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Players returns a copy of the current player list, in join order.
func (s *Session) Players() []chat.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.User, len(s.players))
	copy(out, s.players)
	return out
}

// TurnOrder returns a copy of the turn order, or nil when the game has none.
func (s *Session) TurnOrder() []chat.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turnOrder == nil {
		return nil
	}
	out := make([]chat.User, len(s.turnOrder))
	copy(out, s.turnOrder)
	return out
}

// Options returns a copy of the current option values.
func (s *Session) Options() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.options))
	for k, v := range s.options {
		out[k] = v
	}
	return out
}

// RandomTurns reports whether random turn order is toggled on.
func (s *Session) RandomTurns() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.randomTurns
}

// Display returns the current setup message handle.
func (s *Session) Display() chat.MessageRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display
}
