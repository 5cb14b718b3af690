package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "restaurants_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "restaurants_test", cfg.MongoDB.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Cache.ThreadTTL)
	assert.Equal(t, "@every 10m", cfg.Jobs.RatingSyncSchedule)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.MongoDB.URI)
	assert.Equal(t, "5001", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins, "empty env falls back to the default")
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
}

func TestKeycloakIssuer(t *testing.T) {
	assert.Equal(t, "http://kc/realms/food", KeycloakConfig{URL: "http://kc/", Realm: "food"}.Issuer())
	assert.Equal(t, "http://kc/realms/food", KeycloakConfig{URL: "http://kc/realms/food"}.Issuer())
}
