package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "v1", cfg.Version())
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 3, cfg.MaxFailedLogins)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Nil(t, cfg.KafkaBrokers)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("API_PREFIX", "/api/v2/")
	t.Setenv("JWT_EXPIRY", "60")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("MAX_FAILED_LOGINS", "not-a-number")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/api/v2", cfg.APIPrefix)
	assert.Equal(t, "v2", cfg.Version())
	assert.Equal(t, time.Minute, cfg.AccessTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3, cfg.MaxFailedLogins)
}

func TestFromEnv_Validation(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_ALGORITHM", "RS256")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
	assert.Contains(t, err.Error(), "RS256")
}
