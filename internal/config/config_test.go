package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_NAME", "ads")
	t.Setenv("JWT_SECRET", "s3cret")
}

func TestLoad(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.EqualValues(t, 1, cfg.AdminNotifyUserID)
	assert.Equal(t, "tv-ad-booking", cfg.ServiceName)
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, k := range []string{"DB_USER", "DB_NAME", "JWT_SECRET"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BcryptRange(t *testing.T) {
	setRequired(t)
	t.Setenv("BCRYPT_COST", "3")
	_, err := Load()
	assert.ErrorContains(t, err, "BCRYPT_COST")
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "45s")
	cfg, err := LoadCacheConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
	assert.Equal(t, 45*time.Second, cfg.TTL)
}

func TestLoadRateLimitConfig_Normalizes(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg, err := LoadRateLimitConfig()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadRedisConfig_HostPort(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	cfg, err := LoadRedisConfig()
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", cfg.Addr)
}

func TestLoadBrokerConfig(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "amqp://guest:guest@mq:5672/")
	cfg, err := LoadBrokerConfig()
	require.NoError(t, err)
	assert.Equal(t, "booking.events", cfg.Queue)
	assert.Equal(t, "logs", cfg.AuditLogDir)
	assert.True(t, cfg.Consume)
}
