// internal/commands/set.go
package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/parlorbot/parlor/internal/chat"
	"github.com/parlorbot/parlor/internal/settings"
	"github.com/parlorbot/parlor/internal/setup"
)

// Set creates the guild-settings command. Values are coerced against the
// runtime type of the current setting, the same way game options are.
func Set() *Command {
	return &Command{
		Name:        "set",
		Aliases:     []string{"setconfig"},
		Description: "Sets a particular setting for the server.",
		Usage:       "set <option> [...]",
		Run:         runSet,
	}
}

func runSet(ctx context.Context, r *Router, msg chat.IncomingMessage, args []string) {
	if len(args) == 0 {
		r.reply(ctx, msg, fmt.Sprintf("%s You must name a property to set.", msg.Author.Mention()))
		return
	}
	prop, value := args[0], args[1:]

	current := r.Settings.Guild(ctx, msg.GuildID)
	cur, ok := current[prop]
	if !ok {
		r.reply(ctx, msg, fmt.Sprintf("%s The property `%s` could not be found.", msg.Author.Mention(), prop))
		return
	}

	// The channel whitelist is list-valued and managed with add/remove.
	if prop == settings.KeyChannelWhitelist {
		runSetWhitelist(ctx, r, msg, value)
		return
	}

	coerced, err := setup.Coerce(cur, value)
	if errors.Is(err, setup.ErrUnsupportedType) {
		r.Log.WithField("property", prop).WithError(err).Error("setting has unsupported type")
		r.reply(ctx, msg, "Something went wrong while setting that property. This has been reported.")
		return
	}
	if err != nil {
		r.reply(ctx, msg, fmt.Sprintf("Could not set `%s`: %v.", prop, err))
		return
	}

	if err := r.Settings.SetKey(ctx, msg.GuildID, prop, coerced); err != nil {
		r.Log.WithError(err).Error("failed to save guild setting")
		r.reply(ctx, msg, "Failed to save the setting. Please try again later.")
		return
	}
	r.reply(ctx, msg, fmt.Sprintf("Setting `%s` has been set to `%v` for this guild.", prop, coerced))
}

func runSetWhitelist(ctx context.Context, r *Router, msg chat.IncomingMessage, args []string) {
	if len(args) == 0 {
		r.reply(ctx, msg, "You must either `add` or `remove` from this setting!")
		return
	}
	action, rest := args[0], args[1:]

	channels := channelMentions(rest)
	if len(channels) == 0 {
		r.reply(ctx, msg, "You must mention at least one channel!")
		return
	}

	switch action {
	case "add":
		for _, id := range channels {
			if err := r.Settings.AddWhitelistChannel(ctx, msg.GuildID, id); err != nil {
				r.Log.WithError(err).Error("failed to add whitelist channel")
				r.reply(ctx, msg, "Failed to save the setting. Please try again later.")
				return
			}
		}
		r.reply(ctx, msg, "The mentioned channels have been added to the whitelist.")
	case "remove":
		for _, id := range channels {
			if err := r.Settings.RemoveWhitelistChannel(ctx, msg.GuildID, id); err != nil {
				r.Log.WithError(err).Error("failed to remove whitelist channel")
				r.reply(ctx, msg, "Failed to save the setting. Please try again later.")
				return
			}
		}
		r.reply(ctx, msg, "The mentioned channels have been removed from the whitelist.")
	default:
		r.reply(ctx, msg, "You must either `add` or `remove` from this setting!")
	}
}

// channelMentions extracts channel IDs from mention tokens like <#123>.
func channelMentions(args []string) []string {
	var out []string
	for _, a := range args {
		if strings.HasPrefix(a, "<#") && strings.HasSuffix(a, ">") {
			if id := a[2 : len(a)-1]; id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}
