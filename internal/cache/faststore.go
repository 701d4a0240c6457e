package cache

import (
	"context"
	"time"

	"github.com/VictoriaMetrics/fastcache"
)

// FastStore wraps github.com/VictoriaMetrics/fastcache. Used for the
// search-result cache, where hot-path allocation-free reads matter
// more than persistence.
type FastStore struct {
	cache *fastcache.Cache
}

func NewFastStore(maxBytes int) *FastStore {
	return &FastStore{cache: fastcache.New(maxBytes)}
}

func (s *FastStore) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, ok := s.cache.HasGet(nil, []byte(key))
	if !ok {
		return nil, false
	}
	return decodeEntry(raw)
}

func (s *FastStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	encoded, err := encodeEntry(value, ttl)
	if err != nil {
		return
	}
	s.cache.Set([]byte(key), encoded)
}

func (s *FastStore) Close() error { return nil }

// SaveToFile persists the cache to disk so a restart starts warm.
func (s *FastStore) SaveToFile(path string, concurrency int) error {
	return s.cache.SaveToFileConcurrent(path, concurrency)
}
