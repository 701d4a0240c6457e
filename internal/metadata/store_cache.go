package metadata

import (
	"context"
	"time"

	"github.com/scavengarr/scavengarr/internal/cache"
	"github.com/scavengarr/scavengarr/internal/domain"
)

// StoreCache adapts any internal/cache.Store into the Resolver's
// CacheGetSetter, gob-encoding domain.ReferenceTitle. TTL is fixed at
// construction; id-to-title mappings barely change, so it is long
// (24h).
type StoreCache struct {
	store cache.Store
	ttl   time.Duration
}

func NewStoreCache(store cache.Store, ttl time.Duration) *StoreCache {
	return &StoreCache{store: store, ttl: ttl}
}

func (c *StoreCache) Get(ctx context.Context, key string) (domain.ReferenceTitle, bool) {
	var title domain.ReferenceTitle
	if !cache.GetGob(ctx, c.store, key, &title) {
		return domain.ReferenceTitle{}, false
	}
	return title, true
}

func (c *StoreCache) Set(ctx context.Context, key string, title domain.ReferenceTitle) {
	cache.SetGob(ctx, c.store, key, title, c.ttl)
}
