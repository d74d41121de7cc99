// internal/setup/invite.go
package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/parlorbot/parlor/internal/chat"
)

// awaitAccept runs one invite race: wait for the invitee to reply "accept"
// in the setup channel within the invite timeout. Each race runs in its own
// goroutine, independently of other invites and of subcommand handling.
func (s *Session) awaitAccept(ctx context.Context, user chat.User) {
	match := func(m chat.IncomingMessage) bool {
		return m.Author.ID == user.ID && strings.EqualFold(strings.TrimSpace(m.Content), "accept")
	}
	if _, err := s.messenger.AwaitReply(ctx, s.ChannelID, match, s.InviteTimeout); err != nil {
		s.send(ctx, fmt.Sprintf("Invite for user **%s** has timed out.", user.Tag))
		return
	}
	s.accept(ctx, user)
}

// accept applies a qualifying reply. Acceptances landing after the session
// reached a terminal state are rejected with a message, never applied.
// Capacity is re-validated here: concurrent invite races may have filled
// the lobby since the invite was issued.
func (s *Session) accept(ctx context.Context, user chat.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		s.send(ctx, fmt.Sprintf("%s The setup has already ended.", user.Mention()))
		return
	}
	if indexOf(s.players, user.ID) >= 0 {
		return
	}
	if len(s.players) >= s.Descriptor.MaxPlayers {
		s.send(ctx, fmt.Sprintf("%s The lobby is already full! (Player limit: %d)", user.Mention(), s.Descriptor.MaxPlayers))
		return
	}

	s.players = append(s.players, user)
	if s.turnOrder != nil {
		s.turnOrder = append(s.turnOrder, user)
	}
	s.send(ctx, fmt.Sprintf("%s Invite accepted!", user.Mention()))
	s.redraw(ctx)
	s.log.WithField("user", user.ID).Info("invite accepted")
}
