package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type StoreDriver string

const (
	StoreMemory   StoreDriver = "memory"
	StoreFile     StoreDriver = "file"
	StoreSQLite   StoreDriver = "sqlite"
	StorePostgres StoreDriver = "postgres"
)

// Config describes the engine runtime.
type Config struct {
	HTTPAddr     string        `env:"SHIPLIFE_HTTP_ADDR"     envDefault:":8080"`
	ContentDir   string        `env:"SHIPLIFE_CONTENT_DIR"   envDefault:"./data"`
	StoreDriver  StoreDriver   `env:"SHIPLIFE_STORE"         envDefault:"sqlite"`
	FileDir      string        `env:"SHIPLIFE_FILE_DIR"      envDefault:"./saves"`
	SQLitePath   string        `env:"SHIPLIFE_SQLITE_PATH"   envDefault:"./shiplife.db"`
	DBDSN        string        `env:"SHIPLIFE_DB_DSN"`
	SaveKey      string        `env:"SHIPLIFE_SAVE_KEY"      envDefault:"shiplife_save"`
	SaveDebounce time.Duration `env:"SHIPLIFE_SAVE_DEBOUNCE" envDefault:"500ms"`
	Seed         uint64        `env:"SHIPLIFE_SEED"`
	LogLevel     string        `env:"SHIPLIFE_LOG_LEVEL"     envDefault:"info"`
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreDriver = StoreDriver(strings.ToLower(strings.TrimSpace(string(cfg.StoreDriver))))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StoreFile:
		if strings.TrimSpace(c.FileDir) == "" {
			return errors.New("SHIPLIFE_FILE_DIR is required for the file store")
		}
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("SHIPLIFE_SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			return errors.New("SHIPLIFE_DB_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.SaveDebounce < 0 {
		return errors.New("SHIPLIFE_SAVE_DEBOUNCE must not be negative")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level; unknown values read as info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
