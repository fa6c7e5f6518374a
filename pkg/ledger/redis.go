package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "paykit:ledger:"

// Redis is a Ledger backed by a Redis SETNX per key. SETNX is atomic on the
// server, which gives the exactly-one-Accepted guarantee across processes.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed ledger. A zero ttl keeps entries forever;
// a positive ttl bounds storage when providers guarantee a retry horizon.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if client == nil {
		panic("ledger: redis client is required")
	}
	return &Redis{client: client, ttl: ttl}
}

// RecordIfNew atomically records the key via SETNX.
func (r *Redis) RecordIfNew(ctx context.Context, key string) (Result, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	set, err := r.client.SetNX(ctx, redisKeyPrefix+key, time.Now().UTC().Format(time.RFC3339Nano), r.ttl).Result()
	if err != nil {
		return "", errors.Join(ErrStorageFailed, err)
	}
	if !set {
		return AlreadyProcessed, nil
	}
	return Accepted, nil
}

// Release removes the key so the payment event can be retried.
func (r *Redis) Release(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}
