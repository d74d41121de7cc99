// internal/settings/settings.go
//
// Package settings holds per-guild bot configuration: the command prefix
// and the channel whitelist. Values are schemaless on purpose — the `set`
// command dispatches on the runtime type of the current value, the same
// way game options are coerced.
package settings

// Settings is one guild's key-value configuration.
type Settings map[string]any

// Well-known keys.
const (
	KeyPrefix           = "prefix"
	KeyChannelWhitelist = "channelWhitelist"
)

// Defaults returns a fresh copy of the default guild settings.
func Defaults() Settings {
	return Settings{
		KeyPrefix:           "!",
		KeyChannelWhitelist: []string{},
	}
}

// Clone deep-copies the settings map.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		if list, ok := v.([]string); ok {
			cp := make([]string, len(list))
			copy(cp, list)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}

// Prefix returns the guild's command prefix, falling back to the default.
func (s Settings) Prefix() string {
	if p, ok := s[KeyPrefix].(string); ok && p != "" {
		return p
	}
	return "!"
}

// Whitelist returns the channel whitelist. An empty whitelist means every
// channel is allowed.
func (s Settings) Whitelist() []string {
	switch v := s[KeyChannelWhitelist].(type) {
	case []string:
		return v
	case []any:
		// JSON round-trips string slices as []any.
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// ChannelAllowed reports whether commands may run in the channel.
func (s Settings) ChannelAllowed(channelID string) bool {
	wl := s.Whitelist()
	if len(wl) == 0 {
		return true
	}
	for _, id := range wl {
		if id == channelID {
			return true
		}
	}
	return false
}
