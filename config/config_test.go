package config_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesim/config"
)

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("JWT_SECRET", "s3cret")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("API_KEY", "key")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_KEY", "key")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STARTING_CASH", "")
	t.Setenv("PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.StartingCash.Equal(decimal.NewFromInt(10000)))
}

func TestLoadStartingCashOverride(t *testing.T) {
	t.Setenv("API_KEY", "key")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STARTING_CASH", "2500")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.StartingCash.Equal(decimal.NewFromInt(2500)))
}

func TestLoadRejectsBadStartingCash(t *testing.T) {
	t.Setenv("API_KEY", "key")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STARTING_CASH", "lots")

	_, err := config.Load()
	assert.Error(t, err)
}
