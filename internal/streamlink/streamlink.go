// Package streamlink mints an opaque id for a hoster embed URL and
// caches the mapping, so the proxy-play endpoint can later redirect to
// a live resolution of that id. The embed URL is stored rather than
// the final video URL, since resolved CDN URLs go stale quickly.
package streamlink

import (
	"context"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/scavengarr/scavengarr/internal/cache"
	"github.com/scavengarr/scavengarr/internal/domain"
)

const keyPrefix = "streamlink-"

// Store mints and resolves opaque stream-link ids.
type Store struct {
	backend cache.Store
	ttl     time.Duration
}

func New(backend cache.Store, ttl time.Duration) *Store {
	return &Store{backend: backend, ttl: ttl}
}

// Put mints an opaque id from the embed URL (a blake2b hash, so the
// same embed URL always maps to the same id within the TTL window —
// repeated Stremio stream requests for the same release don't grow the
// cache) and stores the full CachedStreamLink under it.
func (s *Store) Put(ctx context.Context, embedURL, title, hoster string) domain.CachedStreamLink {
	id := opaqueID(embedURL)
	link := domain.CachedStreamLink{
		OpaqueID: id,
		EmbedURL: embedURL,
		Title:    title,
		Hoster:   hoster,
	}
	cache.SetGob(ctx, s.backend, keyPrefix+id, link, s.ttl)
	return link
}

// Get looks up a previously minted id. Found is false on cache miss or
// expiry, which the proxy-play handler treats as a 404.
func (s *Store) Get(ctx context.Context, opaqueID string) (domain.CachedStreamLink, bool) {
	var link domain.CachedStreamLink
	if !cache.GetGob(ctx, s.backend, keyPrefix+opaqueID, &link) {
		return domain.CachedStreamLink{}, false
	}
	return link, true
}

func opaqueID(embedURL string) string {
	sum := blake2b.Sum256([]byte(embedURL))
	return hex.EncodeToString(sum[:16])
}
