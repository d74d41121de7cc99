// internal/settings/store.go
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const cacheTTL = 5 * time.Minute

// Store persists guild settings in postgres with a redis read-through
// cache. Reads degrade to defaults when the backends are unavailable so a
// storage outage never takes command handling down.
type Store struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  *log.Entry
}

func NewStore(pool *pgxpool.Pool, rdb *redis.Client, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Store{pool: pool, rdb: rdb, log: logger.WithField("component", "settings")}
}

// EnsureSchema creates the guild_settings table if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	q := `
		CREATE TABLE IF NOT EXISTS guild_settings (
			guild_id TEXT PRIMARY KEY,
			settings JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := s.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("failed to ensure guild_settings schema: %w", err)
	}
	return nil
}

// Guild loads a guild's settings: redis first, then postgres, then
// defaults. Stored settings are merged over the defaults so new keys get
// their default value for old rows.
func (s *Store) Guild(ctx context.Context, guildID string) Settings {
	if cached, ok := s.fromCache(ctx, guildID); ok {
		return cached
	}

	merged := Defaults()
	if s.pool == nil {
		return merged
	}
	stored, err := s.fromDB(ctx, guildID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.log.WithError(err).WithField("guild", guildID).Warn("failed to load guild settings, using defaults")
		}
		return merged
	}
	for k, v := range stored {
		merged[k] = v
	}
	s.toCache(ctx, guildID, merged)
	return merged
}

// SetKey overwrites one settings key for a guild and persists the result.
func (s *Store) SetKey(ctx context.Context, guildID, key string, value any) error {
	current := s.Guild(ctx, guildID)
	current[key] = value
	return s.save(ctx, guildID, current)
}

// AddWhitelistChannel appends a channel to the guild's whitelist.
func (s *Store) AddWhitelistChannel(ctx context.Context, guildID, channelID string) error {
	current := s.Guild(ctx, guildID)
	wl := current.Whitelist()
	for _, id := range wl {
		if id == channelID {
			return nil
		}
	}
	current[KeyChannelWhitelist] = append(wl, channelID)
	return s.save(ctx, guildID, current)
}

// RemoveWhitelistChannel drops a channel from the guild's whitelist.
func (s *Store) RemoveWhitelistChannel(ctx context.Context, guildID, channelID string) error {
	current := s.Guild(ctx, guildID)
	wl := current.Whitelist()
	out := make([]string, 0, len(wl))
	for _, id := range wl {
		if id != channelID {
			out = append(out, id)
		}
	}
	current[KeyChannelWhitelist] = out
	return s.save(ctx, guildID, current)
}

func (s *Store) save(ctx context.Context, guildID string, settings Settings) error {
	if s.pool == nil {
		return errors.New("settings store has no database connection")
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal guild settings: %w", err)
	}
	q := `
		INSERT INTO guild_settings (guild_id, settings, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (guild_id) DO UPDATE SET settings = EXCLUDED.settings, updated_at = now()
	`
	if _, err := s.pool.Exec(ctx, q, guildID, data); err != nil {
		return fmt.Errorf("failed to save guild settings: %w", err)
	}
	s.invalidate(ctx, guildID)
	return nil
}

func (s *Store) fromDB(ctx context.Context, guildID string) (Settings, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT settings FROM guild_settings WHERE guild_id = $1`, guildID).Scan(&data)
	if err != nil {
		return nil, err
	}
	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guild settings: %w", err)
	}
	return out, nil
}

func (s *Store) fromCache(ctx context.Context, guildID string) (Settings, bool) {
	if s.rdb == nil {
		return nil, false
	}
	data, err := s.rdb.Get(ctx, cacheKey(guildID)).Bytes()
	if err != nil {
		return nil, false
	}
	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (s *Store) toCache(ctx context.Context, guildID string, settings Settings) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKey(guildID), data, cacheTTL).Err(); err != nil {
		s.log.WithError(err).Debug("failed to cache guild settings")
	}
}

func (s *Store) invalidate(ctx context.Context, guildID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cacheKey(guildID)).Err(); err != nil {
		s.log.WithError(err).Debug("failed to invalidate guild settings cache")
	}
}

func cacheKey(guildID string) string {
	return "guild_settings:" + guildID
}
