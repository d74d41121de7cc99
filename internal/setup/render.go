// internal/setup/render.go
package setup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/parlorbot/parlor/internal/chat"
)

// View is the projection of session state the display message is rendered
// from. Render is a pure function of a View: identical views produce
// byte-identical text.
type View struct {
	Name        string
	HostTag     string
	Prefix      string
	Players     []chat.User
	TurnOrder   []chat.User // nil when the game has no turn order
	RandomTurns bool
	Options     map[string]any
	HasOptions  bool
}

// Render produces the lobby display text: header, player list, optional
// turn-order section, options summary, instructional footer.
func Render(v View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Setting up game:** %s\n**Host:** %s\n--------------------\n", v.Name, v.HostTag)

	b.WriteString("**Players:**\n")
	mentions := make([]string, len(v.Players))
	for i, u := range v.Players {
		mentions[i] = u.Mention()
	}
	b.WriteString(strings.Join(mentions, " "))

	if v.TurnOrder != nil {
		b.WriteString("\n\n**Current turn order:**\n")
		if v.RandomTurns {
			b.WriteString("*Randomized!*")
		} else {
			order := make([]string, len(v.TurnOrder))
			for i, u := range v.TurnOrder {
				order[i] = u.Mention()
			}
			b.WriteString(strings.Join(order, ", "))
		}
	}

	if v.HasOptions {
		b.WriteString("\n\n**Game options:**")
		keys := make([]string, 0, len(v.Options))
		for k := range v.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n`%s`: `%v`", k, v.Options[k])
		}
	} else {
		b.WriteString("\n\nThis game has no custom rules available.")
	}

	fmt.Fprintf(&b, "\n\n*Once you are ready, run the command `%ssetupgame start` to start the game.*", v.Prefix)
	fmt.Fprintf(&b, "\n*To cancel this setup, run the command `%ssetupgame cancel`.*", v.Prefix)
	b.WriteString("\n*Setup times out automatically 120 seconds after the last command.*")

	return b.String()
}
