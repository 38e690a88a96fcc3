package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "market")
	t.Setenv("JWT_SECRET", "s3cret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, "https://your-frontend-url.com/payment/success", cfg.Payment.ReturnURL)
	assert.True(t, cfg.Broker.Enabled)
	assert.Equal(t, "logs/audit.log", cfg.Broker.AuditLogPath)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("FRONTEND_URL", "https://shop.example/payment/done")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("BROKER_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example/payment/done", cfg.Payment.ReturnURL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.Broker.Enabled)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse env:"), err.Error())
}

func TestLoadCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")

	cfg, err := LoadCacheConfig()
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, "user_route_query", cfg.WithKeyStrategy("user_route_query").KeyStrategy)
	assert.Equal(t, "route_query", cfg.KeyStrategy)
}

func TestRateLimitNormalize(t *testing.T) {
	cfg := RateLimitConfig{Capacity: 0, RefillTokens: -1, RefillInterval: 0, TTL: time.Second}.normalize()

	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, time.Second, cfg.RefillInterval)
	assert.Equal(t, 5*time.Second, cfg.TTL)
}

func TestRedisAddress(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: "6380", Addr: "x:1"}.Address())
	assert.Equal(t, "x:1", RedisConfig{Host: "cache", Addr: "x:1"}.Address())
}
