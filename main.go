package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/parlorbot/parlor/internal/chat"
	"github.com/parlorbot/parlor/internal/commands"
	"github.com/parlorbot/parlor/internal/config"
	"github.com/parlorbot/parlor/internal/games"
	"github.com/parlorbot/parlor/internal/settings"
	"github.com/parlorbot/parlor/internal/setup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := log.New()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx := context.Background()

	// Guild settings live in postgres with a redis cache; both are
	// optional, reads fall back to defaults.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("failed to create pgx pool: %v", err)
		}
		defer pool.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := pool.Ping(pingCtx); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		cancel()
	} else {
		logger.Warn("DATABASE_URL not set; guild settings will not persist")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable; settings cache disabled")
			rdb = nil
		}
		cancel()
	}

	store := settings.NewStore(pool, rdb, logger)
	if pool != nil {
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatalf("failed to ensure schema: %v", err)
		}
	}

	gameRegistry := games.NewRegistry()
	games.RegisterBuiltin(gameRegistry)
	logger.WithField("games", len(gameRegistry.Names())).Info("loaded games")

	ds, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		logger.Fatalf("failed to create discord session: %v", err)
	}
	ds.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	messenger := chat.NewDiscord(ds)
	router := commands.NewRouter(messenger, store, gameRegistry, setup.NewRegistry(), logger)
	router.RegisterAll()

	ds.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.ID == s.State.User.ID {
			return
		}
		router.Dispatch(ctx, chat.FromDiscordMessage(m.Message))
	})

	if err := ds.Open(); err != nil {
		logger.Fatalf("failed to connect to discord: %v", err)
	}
	defer ds.Close()
	logger.Info("bot started successfully")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	sig := <-stop
	logger.WithField("signal", sig).Info("terminating gracefully")
}
