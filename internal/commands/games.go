// internal/commands/games.go
package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/parlorbot/parlor/internal/chat"
)

// Games creates the game-listing command.
func Games() *Command {
	return &Command{
		Name:        "games",
		Aliases:     []string{"listgames"},
		Description: "Lists the games available to play.",
		Usage:       "games",
		Run:         runGames,
	}
}

func runGames(ctx context.Context, r *Router, msg chat.IncomingMessage, _ []string) {
	names := r.Games.Names()
	if len(names) == 0 {
		r.reply(ctx, msg, "No games are loaded.")
		return
	}
	sort.Strings(names)
	prefix := r.Settings.Guild(ctx, msg.GuildID).Prefix()
	r.reply(ctx, msg, fmt.Sprintf(
		"**Available games:** %s\nRun `%ssetupgame <game>` to start one.",
		strings.Join(names, ", "), prefix,
	))
}
