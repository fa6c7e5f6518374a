package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paykit/pkg/config"
)

type providerConfig struct {
	APIKey      string `env:"TEST_PROVIDER_API_KEY,required,notEmpty"`
	Environment string `env:"TEST_PROVIDER_ENV" envDefault:"sandbox"`
	TimeoutSec  int    `env:"TEST_PROVIDER_TIMEOUT" envDefault:"10"`
}

func TestLoad(t *testing.T) {
	t.Run("parses env into struct with defaults", func(t *testing.T) {
		t.Setenv("TEST_PROVIDER_API_KEY", "sk_test_123")

		var cfg providerConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "sk_test_123", cfg.APIKey)
		assert.Equal(t, "sandbox", cfg.Environment)
		assert.Equal(t, 10, cfg.TimeoutSec)
	})

	t.Run("fails on missing required variable", func(t *testing.T) {
		t.Setenv("TEST_PROVIDER_API_KEY", "")

		var cfg providerConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("rejects nil pointer", func(t *testing.T) {
		err := config.Load[providerConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}
