package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_KEY", testKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.Env)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.Equal(t, 24*time.Hour, cfg.Session.Duration)
}

func TestLoadRejectsMissingSessionKey(t *testing.T) {
	t.Setenv("SESSION_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_KEY")
}

func TestLoadRejectsShortSessionKey(t *testing.T) {
	t.Setenv("SESSION_KEY", "too-short")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_KEY", testKey)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_DURATION", "3600")
	t.Setenv("TRUSTED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, time.Hour, cfg.Session.Duration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.TrustedOrigins)
}

func TestConnectionString(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: "5433", User: "u", Password: "p", DBName: "ecoquiz", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=ecoquiz sslmode=disable", c.ConnectionString())
}
