package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/ryabank")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "10000", cfg.SeedPoolHard.String())
	assert.Equal(t, "1000000", cfg.SeedPoolSoft.String())
	assert.Equal(t, "0.001", cfg.MinTradeHard.String())
	assert.Equal(t, 48, cfg.EnergyRegenMinutes)
	assert.Equal(t, 30, cfg.EnergyDefaultMax)
	assert.Equal(t, 0.7, cfg.BurnSmoothing)
	assert.Equal(t, 25*time.Millisecond, cfg.TxRetryBackoff)
	assert.False(t, cfg.PoolStrictMode)
	assert.False(t, cfg.NATSEnabled)
	assert.Equal(t, "*/15 * * * *", cfg.PoolAuditCron)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")
	t.Setenv("DATABASE_NAME", "economy")
	t.Setenv("SEED_POOL_HARD", "2500.5")
	t.Setenv("POOL_STRICT_MODE", "true")
	t.Setenv("MAX_TX_RETRIES", "0")
	t.Setenv("NATS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "2500.5", cfg.SeedPoolHard.String())
	assert.True(t, cfg.PoolStrictMode)
	assert.Equal(t, 0, cfg.MaxTxRetries)
	assert.True(t, cfg.NATSEnabled)
	assert.Equal(t, "postgres://localhost:5432/economy?sslmode=disable", cfg.ConnectionURL())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing database URL",
			env:  map[string]string{"DATABASE_URL": ""},
		},
		{
			name: "zero seed",
			env:  map[string]string{"SEED_POOL_SOFT": "0"},
		},
		{
			name: "non-positive regen interval",
			env:  map[string]string{"ENERGY_REGEN_MINUTES": "0"},
		},
		{
			name: "unparseable decimal",
			env:  map[string]string{"MIN_TRADE_HARD": "lots"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost:5432/ryabank")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_TestEnvironmentSkipsDatabase(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.DatabaseURL)
}
