package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemStore wraps github.com/patrickmn/go-cache. Used for the
// reference-title cache, a small, hot, long-TTL lookup where go-cache's
// native per-item expiry is convenient.
type MemStore struct {
	cache *gocache.Cache
}

func NewMemStore(defaultTTL, cleanupInterval time.Duration) *MemStore {
	return &MemStore{cache: gocache.New(defaultTTL, cleanupInterval)}
}

func (s *MemStore) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	raw, ok := v.([]byte)
	if !ok {
		return nil, false
	}
	return raw, true
}

func (s *MemStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	s.cache.Set(key, value, ttl)
}

func (s *MemStore) Close() error { return nil }

// ItemCount is exposed for periodic cache-stats logging.
func (s *MemStore) ItemCount() int { return s.cache.ItemCount() }
