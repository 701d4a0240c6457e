// Package metadata resolves reference titles: given a Stremio content
// ID, produce the canonical title/year pair every later pipeline stage
// matches candidates against. Lookups go to a primary source first and
// fall back to a secondary one on error, with a long-TTL cache in
// front.
package metadata

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/scavengarr/scavengarr/internal/domain"
)

// Source is implemented by each metadata backend. Both the TMDB and
// Cinemeta clients implement it, letting the Resolver treat them
// interchangeably; the gRPC imdb2meta client is a third
// implementation.
type Source interface {
	Resolve(ctx context.Context, externalID string, kind domain.Kind) (domain.ReferenceTitle, error)
}

// CacheGetSetter is the subset of the cache layer the Resolver needs.
// Satisfied by StoreCache, which adapts any internal/cache.Store.
type CacheGetSetter interface {
	Get(ctx context.Context, key string) (domain.ReferenceTitle, bool)
	Set(ctx context.Context, key string, title domain.ReferenceTitle)
}

// Resolver composes two Sources. primary is tried first; secondary is
// used only when primary errors.
type Resolver struct {
	primary   Source
	secondary Source
	cache     CacheGetSetter
	logger    *zap.Logger
}

// NewResolver builds a Resolver. secondary and cache may be nil.
func NewResolver(primary, secondary Source, cache CacheGetSetter, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{primary: primary, secondary: secondary, cache: cache, logger: logger}
}

// Resolve returns the reference title for externalID, which is either an
// IMDb ID ("tt1234567") or a tmdb:<id> fallback ID. Cache is
// consulted first; on a miss, primary is tried, then secondary.
func (r *Resolver) Resolve(ctx context.Context, externalID string, kind domain.Kind) (domain.ReferenceTitle, error) {
	cacheKey := cacheKeyFor(externalID, kind)
	if r.cache != nil {
		if title, ok := r.cache.Get(ctx, cacheKey); ok {
			return title, nil
		}
	}

	title, err := r.primary.Resolve(ctx, externalID, kind)
	if err != nil {
		r.logger.Debug("primary metadata source failed, falling back",
			zap.String("externalID", externalID), zap.Error(err))
		if r.secondary == nil {
			return domain.ReferenceTitle{}, domain.ErrMetadataMissing
		}
		title, err = r.secondary.Resolve(ctx, externalID, kind)
		if err != nil {
			return domain.ReferenceTitle{}, domain.ErrMetadataMissing
		}
	}

	if r.cache != nil {
		r.cache.Set(ctx, cacheKey, title)
	}
	return title, nil
}

func cacheKeyFor(externalID string, kind domain.Kind) string {
	return "reftitle:" + string(kind) + ":" + externalID
}

// IsFallbackID reports whether externalID uses the tmdb:<id> scheme
// rather than a native IMDb ID. The catalog handler lists every TMDB
// entry under such an id.
func IsFallbackID(externalID string) bool {
	return strings.HasPrefix(externalID, "tmdb:")
}

// ParseFallbackID extracts the numeric TMDB ID from a tmdb:<id> string.
func ParseFallbackID(externalID string) (int, bool) {
	if !IsFallbackID(externalID) {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(externalID, "tmdb:"))
	if err != nil {
		return 0, false
	}
	return id, true
}
