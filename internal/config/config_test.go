package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.False(t, cfg.Migrate)
	assert.Equal(t, 100, cfg.RateRPS)
	assert.Equal(t, 4, cfg.WorkerCount)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("APP_MIGRATE", "true")
	t.Setenv("RATE_RPS", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.True(t, cfg.Migrate)
	assert.Equal(t, 10, cfg.RateRPS)
}
