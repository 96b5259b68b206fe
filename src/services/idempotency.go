package services

import (
	"context"
	"hotelmaint/src/config"
	"hotelmaint/src/lib"
	"sync"

	"github.com/redis/go-redis/v9"
)

type RedisKeyClaimer struct {
	rdb *redis.Client
}

func NewRedisKeyClaimer(rdb *redis.Client) *RedisKeyClaimer {
	return &RedisKeyClaimer{rdb: rdb}
}

func (c *RedisKeyClaimer) Claim(ctx context.Context, key, value string) (string, bool, error) {
	return lib.ClaimKey(ctx, c.rdb, key, value, config.IDEMPOTENCY_TTL)
}

func (c *RedisKeyClaimer) Release(ctx context.Context, key string) error {
	return lib.Evict(ctx, c.rdb, key)
}

// MemoryKeyClaimer never expires keys; it serves local runs and tests.
type MemoryKeyClaimer struct {
	mu   sync.Mutex
	keys map[string]string
}

func NewMemoryKeyClaimer() *MemoryKeyClaimer {
	return &MemoryKeyClaimer{keys: map[string]string{}}
}

func (c *MemoryKeyClaimer) Claim(_ context.Context, key, value string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if held, ok := c.keys[key]; ok {
		return held, false, nil
	}
	c.keys[key] = value
	return value, true, nil
}

func (c *MemoryKeyClaimer) Release(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.keys, key)
	return nil
}
