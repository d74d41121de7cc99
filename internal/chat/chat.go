// internal/chat/chat.go
package chat

import (
	"context"
	"errors"
	"time"
)

// ErrAwaitTimeout is returned by Messenger.AwaitReply when no matching
// message arrives before the timeout elapses.
var ErrAwaitTimeout = errors.New("chat: await reply timed out")

// User identifies a chat-platform user.
type User struct {
	ID  string
	Tag string // human-readable handle, e.g. "someone#1234"
}

// Mention renders the platform mention token for the user.
func (u User) Mention() string {
	return "<@" + u.ID + ">"
}

// MessageRef is a handle to a sent message, sufficient to edit or delete it.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// IncomingMessage is a message received from the platform, with mentions
// already resolved.
type IncomingMessage struct {
	Author    User
	ChannelID string
	GuildID   string
	Content   string
	Mentions  []User
}

// MatchFunc decides whether an incoming message satisfies a reply wait.
type MatchFunc func(IncomingMessage) bool

// Messenger is the chat-platform surface the bot depends on. The production
// implementation wraps a Discord gateway session; tests use chattest.
type Messenger interface {
	Send(ctx context.Context, channelID, content string) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, content string) error
	Delete(ctx context.Context, ref MessageRef) error

	// AwaitReply blocks until a single message in channelID satisfies match,
	// or returns ErrAwaitTimeout after the given duration.
	AwaitReply(ctx context.Context, channelID string, match MatchFunc, timeout time.Duration) (IncomingMessage, error)
}
