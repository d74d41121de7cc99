// internal/config/config.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, read from the environment (a .env
// file is autoloaded in main).
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	DatabaseURL  string `env:"DATABASE_URL"`
	RedisAddr    string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB      int    `env:"REDIS_DB" envDefault:"0"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
