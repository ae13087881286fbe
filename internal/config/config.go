// Package config reads the dashboard service configuration from the
// environment, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
)

type Config struct {
	AppEnv         string        `env:"APP_ENV" envDefault:"local"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort       int           `env:"HTTP_PORT" envDefault:"8501"`
	DataDir        string        `env:"DATA_DIR" envDefault:"./data"`
	NamesPath      string        `env:"NAMES_PATH"`
	StoplistPath   string        `env:"STOPLIST_PATH"`
	PosterDBPath   string        `env:"POSTER_DB_PATH"`
	PosterBaseURL  string        `env:"POSTER_BASE_URL" envDefault:"https://image.tmdb.org/t/p/w300"`
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	OverviewPath   string        `env:"OVERVIEW_PATH" envDefault:"01_overview/titles.csv"`
	ShutdownGrace  time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`
	TrustedProxies []string      `env:"TRUSTED_PROXIES" envSeparator:","`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges env.Parse cannot express.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT %d: %w", c.HTTPPort, internalerr.ErrInvalidConfig)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit %v/%d: %w", c.RateLimitRPS, c.RateLimitBurst, internalerr.ErrInvalidConfig)
	}
	if filepath.IsAbs(c.OverviewPath) {
		return fmt.Errorf("OVERVIEW_PATH must be relative to DATA_DIR: %w", internalerr.ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("LOG_LEVEL %q: %w", c.LogLevel, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// NewLogger builds the process logger: a console writer for local runs,
// JSON otherwise.
func NewLogger(appEnv, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(lvl).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
