package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "POSTGRES_DSN", "RUN_MIGRATIONS", "TEMPORAL_DISABLED", "PAYMENTS_BASE_URL", "PAYMENTS_CURRENCY", "SESSION_TTL_HOURS"} {
		t.Setenv(key, "")
	}
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.RunMigrations)
	assert.False(t, cfg.TemporalDisabled)
	assert.Equal(t, "USD", cfg.PaymentsCurrency)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RUN_MIGRATIONS", "no")
	t.Setenv("TEMPORAL_DISABLED", "yes")
	t.Setenv("SESSION_TTL_HOURS", "2")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.RunMigrations)
	assert.True(t, cfg.TemporalDisabled)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestLoadConfigRejectsInvalidNumbers(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "-1")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("SESSION_TTL_HOURS", "")
	t.Setenv("PORT", "http")
	_, err = LoadConfig()
	assert.Error(t, err)
}
