// internal/commands/router.go
//
// Package commands dispatches prefix commands from incoming chat messages
// to their handlers, and owns the bot-wide registries the handlers share.
package commands

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/parlorbot/parlor/internal/chat"
	"github.com/parlorbot/parlor/internal/games"
	"github.com/parlorbot/parlor/internal/settings"
	"github.com/parlorbot/parlor/internal/setup"
)

// SettingsProvider is the slice of the settings store the router and
// commands need. *settings.Store implements it; tests use an in-memory
// stub.
type SettingsProvider interface {
	Guild(ctx context.Context, guildID string) settings.Settings
	SetKey(ctx context.Context, guildID, key string, value any) error
	AddWhitelistChannel(ctx context.Context, guildID, channelID string) error
	RemoveWhitelistChannel(ctx context.Context, guildID, channelID string) error
}

// Command is one registered bot command.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
	Run         func(ctx context.Context, r *Router, msg chat.IncomingMessage, args []string)
}

// Router resolves the guild prefix, tokenizes incoming messages and runs
// the matching command.
type Router struct {
	Messenger chat.Messenger
	Settings  SettingsProvider
	Games     *games.Registry
	Sessions  *setup.Registry
	Log       *log.Logger

	commands map[string]*Command
	aliases  map[string]string
}

// NewRouter wires a router; commands are added with Register.
func NewRouter(m chat.Messenger, s SettingsProvider, g *games.Registry, sessions *setup.Registry, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Router{
		Messenger: m,
		Settings:  s,
		Games:     g,
		Sessions:  sessions,
		Log:       logger,
		commands:  make(map[string]*Command),
		aliases:   make(map[string]string),
	}
}

// Register adds a command and its aliases.
func (r *Router) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, a := range cmd.Aliases {
		r.aliases[a] = cmd.Name
	}
	r.Log.WithField("command", cmd.Name).Info("loaded command")
}

// Lookup resolves a command by name or alias.
func (r *Router) Lookup(name string) (*Command, bool) {
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Dispatch handles one incoming message: prefix check, whitelist check,
// tokenization, command lookup and execution. Non-command messages are
// ignored silently.
func (r *Router) Dispatch(ctx context.Context, msg chat.IncomingMessage) {
	if msg.GuildID == "" {
		return // DMs are not supported
	}

	guildSettings := r.Settings.Guild(ctx, msg.GuildID)
	prefix := guildSettings.Prefix()
	if !strings.HasPrefix(msg.Content, prefix) {
		return
	}
	if !guildSettings.ChannelAllowed(msg.ChannelID) {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(msg.Content, prefix))
	if len(fields) == 0 {
		return
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	cmd, ok := r.Lookup(name)
	if !ok {
		return
	}

	r.Log.WithFields(log.Fields{
		"command": cmd.Name,
		"guild":   msg.GuildID,
		"user":    msg.Author.ID,
	}).Debug("dispatching command")
	cmd.Run(ctx, r, msg, args)
}

// RegisterAll loads every built-in command.
func (r *Router) RegisterAll() {
	r.Register(Setupgame())
	r.Register(Set())
	r.Register(Games())
}

// reply sends a message back to the invoking channel, logging failures.
func (r *Router) reply(ctx context.Context, msg chat.IncomingMessage, content string) {
	if _, err := r.Messenger.Send(ctx, msg.ChannelID, content); err != nil {
		r.Log.WithError(err).Warn("failed to send reply")
	}
}
