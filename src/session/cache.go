package session

import (
	"context"
	"fmt"
	"hotelmaint/src/lib"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache keeps recently loaded sessions so authenticated requests skip the
// user lookup.
type Cache interface {
	Get(ctx context.Context, userID uuid.UUID) (*Session, bool)
	Set(ctx context.Context, s *Session) error
	Evict(ctx context.Context, userID uuid.UUID) error
}

func cacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("session:%s", userID)
}

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, userID uuid.UUID) (*Session, bool) {
	var s Session
	ok, err := lib.CachedJSON(ctx, c.rdb, cacheKey(userID), &s)
	if err != nil || !ok {
		return nil, false
	}
	return &s, true
}

func (c *RedisCache) Set(ctx context.Context, s *Session) error {
	return lib.CacheJSON(ctx, c.rdb, cacheKey(s.UserID), s, c.ttl)
}

func (c *RedisCache) Evict(ctx context.Context, userID uuid.UUID) error {
	return lib.Evict(ctx, c.rdb, cacheKey(userID))
}

// MemoryCache is the single process fallback when redis is not configured.
type MemoryCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[uuid.UUID]memoryEntry
}

type memoryEntry struct {
	session Session
	expires time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now, sessions: map[uuid.UUID]memoryEntry{}}
}

func (c *MemoryCache) Get(_ context.Context, userID uuid.UUID) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.sessions[userID]
	if !ok || c.now().After(e.expires) {
		delete(c.sessions, userID)
		return nil, false
	}
	s := e.session
	return &s, true
}

func (c *MemoryCache) Set(_ context.Context, s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.UserID] = memoryEntry{session: *s, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Evict(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, userID)
	return nil
}
