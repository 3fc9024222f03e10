package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/scoreboard.db"`
	DBDriver string     `env:"DB_DRIVER" envDefault:"libsql"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"public"`

	// RedisURL moves saved game sessions to Redis when set.
	RedisURL string `env:"REDIS_URL"`

	AdminPassword   string        `env:"ADMIN_PASSWORD" envDefault:"admin1234"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	AdminTTL        time.Duration `env:"ADMIN_TTL" envDefault:"2h"`
	SavedSessionTTL time.Duration `env:"SAVED_SESSION_TTL" envDefault:"168h"`
	HistoryMax      int           `env:"HISTORY_MAX" envDefault:"20"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.HistoryMax <= 0 {
		return nil, fmt.Errorf("HISTORY_MAX must be positive, got %d", cfg.HistoryMax)
	}
	return &cfg, nil
}
