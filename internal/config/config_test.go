package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg := Load()
	require.NotNil(t, cfg)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 15, cfg.JWT.AccessExpiry)
	assert.Equal(t, 500.0, cfg.Shipping.FreeThreshold)
	assert.Equal(t, 50.0, cfg.Shipping.FlatRate)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerWindow)
	assert.Equal(t, 60, cfg.RateLimit.WindowSeconds)
	assert.Empty(t, cfg.Redis.Host, "redis should stay disabled unless configured")
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("SHIPPING_FLAT_RATE", "12.5")

	cfg := Load()
	require.NotNil(t, cfg)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 12.5, cfg.Shipping.FlatRate)
}
