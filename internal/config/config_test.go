package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.AppEnv)
	assert.Equal(t, 8501, cfg.HTTPPort)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "https://image.tmdb.org/t/p/w300", cfg.PosterBaseURL)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, 10*time.Second, cfg.ShutdownGrace)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Equal(t, ":8501", cfg.Addr())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DATA_DIR", "/srv/data")
	t.Setenv("POSTER_DB_PATH", "/srv/posters.db")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,127.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, "/srv/data", cfg.DataDir)
	assert.Equal(t, "/srv/posters.db", cfg.PosterDBPath)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "HTTP_PORT", "70000"},
		{"zero burst", "RATE_LIMIT_BURST", "0"},
		{"absolute overview", "OVERVIEW_PATH", "/tmp/titles.csv"},
		{"bad level", "LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
		})
	}

	t.Run("not a number", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "eighty")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestNewLogger_Level(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, NewLogger("production", "warn").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewLogger("local", "").GetLevel())
}
