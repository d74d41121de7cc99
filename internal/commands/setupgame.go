// internal/commands/setupgame.go
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/parlorbot/parlor/internal/chat"
	"github.com/parlorbot/parlor/internal/games"
	"github.com/parlorbot/parlor/internal/setup"
)

// Setupgame creates the lobby setup command. The first invocation in a
// channel opens a lobby for the named game; while the lobby is live, every
// further invocation is forwarded to it as a subcommand.
func Setupgame() *Command {
	return &Command{
		Name:        "setupgame",
		Aliases:     []string{"sg"},
		Description: "Sets up and starts a game in this channel.",
		Usage:       "setupgame <game | invite | option | turnorder | resend | start | cancel> [...]",
		Run:         runSetupgame,
	}
}

func runSetupgame(ctx context.Context, r *Router, msg chat.IncomingMessage, args []string) {
	prefix := r.Settings.Guild(ctx, msg.GuildID).Prefix()
	if len(args) == 0 {
		r.reply(ctx, msg, fmt.Sprintf("Usage: `%s%s`", prefix, Setupgame().Usage))
		return
	}

	// A live setup session consumes all further setupgame invocations in
	// its channel.
	if sess, ok := r.Sessions.Session(msg.GuildID, msg.ChannelID); ok {
		sess.HandleCommand(ctx, msg, args)
		return
	}
	if _, ok := r.Sessions.Get(msg.GuildID, msg.ChannelID); ok {
		r.reply(ctx, msg, "A game is already running in this channel!")
		return
	}

	desc, err := r.Games.Lookup(args[0])
	if err != nil {
		r.reply(ctx, msg, fmt.Sprintf("The game `%s` could not be found! Run `%sgames` to list available games.", args[0], prefix))
		return
	}

	_, err = setup.Create(ctx, setup.Config{
		Messenger:  r.Messenger,
		Registry:   r.Sessions,
		Logger:     r.Log,
		Descriptor: desc,
		Host:       msg.Author,
		GuildID:    msg.GuildID,
		ChannelID:  msg.ChannelID,
		Prefix:     prefix,
		OnStart: func(ctx context.Context, snap games.Snapshot) (any, error) {
			inst := games.NewInstance(desc, snap)
			r.reply(ctx, msg, fmt.Sprintf("Game %q has started with %d player(s)!", desc.Name, len(snap.Players)))
			return inst, nil
		},
	})
	if errors.Is(err, setup.ErrChannelActive) {
		r.reply(ctx, msg, "A game is already being set up in this channel!")
		return
	}
	if err != nil {
		r.Log.WithError(err).Error("failed to create setup session")
	}
}
