// internal/chat/discord.go
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Discord adapts a discordgo session to the Messenger interface.
type Discord struct {
	s *discordgo.Session

	mu      sync.Mutex
	waiters []*waiter
}

type waiter struct {
	channelID string
	match     MatchFunc
	reply     chan IncomingMessage
}

// NewDiscord wraps an open discordgo session. It registers a MessageCreate
// handler to feed pending AwaitReply waiters; the caller keeps ownership of
// the session lifecycle.
func NewDiscord(s *discordgo.Session) *Discord {
	d := &Discord{s: s}
	s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.ID == s.State.User.ID {
			return
		}
		d.offer(FromDiscordMessage(m.Message))
	})
	return d
}

// FromDiscordUser converts a discordgo user to the platform-neutral type.
func FromDiscordUser(u *discordgo.User) User {
	return User{ID: u.ID, Tag: u.Username + "#" + u.Discriminator}
}

// FromDiscordMessage converts an incoming discordgo message, resolving
// mentions.
func FromDiscordMessage(m *discordgo.Message) IncomingMessage {
	msg := IncomingMessage{
		Author:    FromDiscordUser(m.Author),
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}
	for _, u := range m.Mentions {
		msg.Mentions = append(msg.Mentions, FromDiscordUser(u))
	}
	return msg
}

func (d *Discord) Send(_ context.Context, channelID, content string) (MessageRef, error) {
	m, err := d.s.ChannelMessageSend(channelID, content)
	if err != nil {
		return MessageRef{}, err
	}
	return MessageRef{ChannelID: m.ChannelID, MessageID: m.ID}, nil
}

func (d *Discord) Edit(_ context.Context, ref MessageRef, content string) error {
	_, err := d.s.ChannelMessageEdit(ref.ChannelID, ref.MessageID, content)
	return err
}

func (d *Discord) Delete(_ context.Context, ref MessageRef) error {
	return d.s.ChannelMessageDelete(ref.ChannelID, ref.MessageID)
}

// AwaitReply parks a waiter for channelID and blocks until the gateway
// delivers a matching message, the timeout fires, or ctx is cancelled.
func (d *Discord) AwaitReply(ctx context.Context, channelID string, match MatchFunc, timeout time.Duration) (IncomingMessage, error) {
	w := &waiter{
		channelID: channelID,
		match:     match,
		reply:     make(chan IncomingMessage, 1),
	}
	d.mu.Lock()
	d.waiters = append(d.waiters, w)
	d.mu.Unlock()
	defer d.removeWaiter(w)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-w.reply:
		return msg, nil
	case <-timer.C:
		return IncomingMessage{}, ErrAwaitTimeout
	case <-ctx.Done():
		return IncomingMessage{}, ctx.Err()
	}
}

// offer hands an incoming message to the first waiter it satisfies. Each
// waiter consumes at most one message.
func (d *Discord) offer(msg IncomingMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, w := range d.waiters {
		if w.channelID != msg.ChannelID || !w.match(msg) {
			continue
		}
		select {
		case w.reply <- msg:
		default:
		}
		d.waiters = append(d.waiters[:i], d.waiters[i+1:]...)
		return
	}
}

func (d *Discord) removeWaiter(w *waiter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, cur := range d.waiters {
		if cur == w {
			d.waiters = append(d.waiters[:i], d.waiters[i+1:]...)
			return
		}
	}
}
