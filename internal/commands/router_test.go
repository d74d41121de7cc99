// internal/commands/router_test.go
package commands

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlorbot/parlor/internal/chat"
	"github.com/parlorbot/parlor/internal/chat/chattest"
	"github.com/parlorbot/parlor/internal/games"
	"github.com/parlorbot/parlor/internal/settings"
	"github.com/parlorbot/parlor/internal/setup"
)

// memSettings is an in-memory SettingsProvider for router tests.
type memSettings struct {
	mu     sync.Mutex
	guilds map[string]settings.Settings
}

func newMemSettings() *memSettings {
	return &memSettings{guilds: make(map[string]settings.Settings)}
}

func (m *memSettings) Guild(_ context.Context, guildID string) settings.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.guilds[guildID]; ok {
		return s.Clone()
	}
	return settings.Defaults()
}

func (m *memSettings) SetKey(ctx context.Context, guildID, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.guilds[guildID]
	if !ok {
		s = settings.Defaults()
		m.guilds[guildID] = s
	}
	s[key] = value
	return nil
}

func (m *memSettings) AddWhitelistChannel(ctx context.Context, guildID, channelID string) error {
	s := m.Guild(ctx, guildID)
	return m.SetKey(ctx, guildID, settings.KeyChannelWhitelist, append(s.Whitelist(), channelID))
}

func (m *memSettings) RemoveWhitelistChannel(ctx context.Context, guildID, channelID string) error {
	s := m.Guild(ctx, guildID)
	out := []string{}
	for _, id := range s.Whitelist() {
		if id != channelID {
			out = append(out, id)
		}
	}
	return m.SetKey(ctx, guildID, settings.KeyChannelWhitelist, out)
}

type routerFixture struct {
	m        *chattest.Messenger
	router   *Router
	sessions *setup.Registry
	store    *memSettings
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)

	m := chattest.New()
	gameRegistry := games.NewRegistry()
	games.RegisterBuiltin(gameRegistry)
	sessions := setup.NewRegistry()
	store := newMemSettings()

	r := NewRouter(m, store, gameRegistry, sessions, logger)
	r.RegisterAll()
	return &routerFixture{m: m, router: r, sessions: sessions, store: store}
}

func (f *routerFixture) dispatch(content string, mentions ...chat.User) {
	f.router.Dispatch(context.Background(), chat.IncomingMessage{
		Author:    chat.User{ID: "u1", Tag: "u1#0001"},
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   content,
		Mentions:  mentions,
	})
}

func (f *routerFixture) sawMessage(substr string) bool {
	for _, s := range f.m.Sends() {
		if strings.Contains(s.Content, substr) {
			return true
		}
	}
	return false
}

func TestDispatchIgnoresNonPrefixed(t *testing.T) {
	f := newRouterFixture(t)
	f.dispatch("hello there")
	f.dispatch("setupgame coup")
	assert.Empty(t, f.m.Sends())
}

func TestDispatchHonorsWhitelist(t *testing.T) {
	f := newRouterFixture(t)
	require.NoError(t, f.store.SetKey(context.Background(), "g1", settings.KeyChannelWhitelist, []string{"c9"}))

	f.dispatch("!games")
	assert.Empty(t, f.m.Sends())
}

func TestSetupgameCreatesSession(t *testing.T) {
	f := newRouterFixture(t)
	f.dispatch("!setupgame liars-dice")

	sess, ok := f.sessions.Session("g1", "c1")
	require.True(t, ok)
	assert.Equal(t, "liars-dice", sess.Descriptor.Name)
	assert.True(t, f.sawMessage("**Setting up game:** liars-dice"))
}

func TestSetupgameForwardsSubcommands(t *testing.T) {
	f := newRouterFixture(t)
	f.dispatch("!setupgame coup")
	_, ok := f.sessions.Session("g1", "c1")
	require.True(t, ok)

	f.dispatch("!setupgame cancel")
	assert.True(t, f.sawMessage("has been aborted"))
	_, ok = f.sessions.Get("g1", "c1")
	assert.False(t, ok)
}

func TestSetupgameStartReplacesSessionWithGame(t *testing.T) {
	f := newRouterFixture(t)
	f.dispatch("!setupgame coup")
	f.dispatch("!setupgame start")

	assert.True(t, f.sawMessage("has started"))
	occupant, ok := f.sessions.Get("g1", "c1")
	require.True(t, ok)
	inst, isInstance := occupant.(*games.Instance)
	require.True(t, isInstance)
	assert.Equal(t, "coup", inst.Descriptor.Name)

	// The running game now blocks new setups in the channel.
	f.dispatch("!setupgame coup")
	assert.True(t, f.sawMessage("already running in this channel"))
}

func TestSetupgameUnknownGame(t *testing.T) {
	f := newRouterFixture(t)
	f.dispatch("!setupgame monopoly")
	assert.True(t, f.sawMessage("could not be found"))
	_, ok := f.sessions.Get("g1", "c1")
	assert.False(t, ok)
}

func TestSetCommandChangesPrefix(t *testing.T) {
	f := newRouterFixture(t)
	f.dispatch("!set prefix ?")
	assert.True(t, f.sawMessage("has been set to `?`"))

	// The old prefix no longer matches; the new one does.
	before := len(f.m.Sends())
	f.dispatch("!games")
	assert.Equal(t, before, len(f.m.Sends()))

	f.dispatch("?games")
	assert.True(t, f.sawMessage("Available games"))
}

func TestSetCommandUnknownProperty(t *testing.T) {
	f := newRouterFixture(t)
	f.dispatch("!set nonsense true")
	assert.True(t, f.sawMessage("could not be found"))
}

func TestSetWhitelistAddAndRemove(t *testing.T) {
	f := newRouterFixture(t)

	f.dispatch("!set channelWhitelist add <#c1>")
	assert.True(t, f.sawMessage("added to the whitelist"))
	assert.Equal(t, []string{"c1"}, f.store.Guild(context.Background(), "g1").Whitelist())

	// Commands still run in c1 since it is whitelisted.
	f.dispatch("!set channelWhitelist remove <#c1>")
	assert.True(t, f.sawMessage("removed from the whitelist"))
	assert.Empty(t, f.store.Guild(context.Background(), "g1").Whitelist())
}

func TestSetWhitelistRequiresChannelMention(t *testing.T) {
	f := newRouterFixture(t)
	f.dispatch("!set channelWhitelist")
	assert.True(t, f.sawMessage("must either `add` or `remove`"))

	f.dispatch("!set channelWhitelist add something")
	assert.True(t, f.sawMessage("must mention at least one channel"))
}

func TestGamesCommandListsGames(t *testing.T) {
	f := newRouterFixture(t)
	f.dispatch("!games")
	assert.True(t, f.sawMessage("coup"))
	assert.True(t, f.sawMessage("liars-dice"))
	assert.True(t, f.sawMessage("hangman"))
}
