package redis_test

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paykit/pkg/config"
	"github.com/dmitrymomot/paykit/pkg/redis"
)

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty connection URL", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("rejects malformed connection URL", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "localhost:6379",
			RetryAttempts:  1,
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		t.Parallel()

		// Port 1 refuses immediately, so every attempt fails fast.
		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://127.0.0.1:1/0",
			RetryAttempts:  2,
			RetryInterval:  time.Millisecond,
			ConnectTimeout: 5 * time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	probe := redis.Healthcheck(client)
	assert.ErrorIs(t, probe(ctx), redis.ErrHealthcheckFailed)
}

func TestConfig_Load(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://:secret@localhost:6380/1")

	var cfg redis.Config
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "redis://:secret@localhost:6380/1", cfg.ConnectionURL)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 5*time.Second, cfg.RetryInterval)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
}
