package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	TelegramToken string  `env:"BOT_TOKEN,required"`
	AdminID       int64   `env:"ADMIN_ID,required"`
	HelperIDs     []int64 `env:"HELPER_IDS" envSeparator:","`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	DataDir     string `env:"DATA_DIR" envDefault:"data"`
	CatalogPath string `env:"CATALOG_PATH" envDefault:"config/catalog.yaml"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogSink  string `env:"LOG_SINK" envDefault:"stdout"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.AdminID == 0 {
		return nil, fmt.Errorf("ADMIN_ID must be a non-zero Telegram ID")
	}

	return &cfg, nil
}

// IsOperator reports whether the given Telegram ID is the main operator
// or one of the helper operators.
func (c *Config) IsOperator(id int64) bool {
	if id == c.AdminID {
		return true
	}
	for _, helperID := range c.HelperIDs {
		if id == helperID {
			return true
		}
	}
	return false
}

// OperatorIDs returns the admin plus helpers, admin first.
func (c *Config) OperatorIDs() []int64 {
	ids := make([]int64, 0, len(c.HelperIDs)+1)
	ids = append(ids, c.AdminID)
	ids = append(ids, c.HelperIDs...)
	return ids
}
