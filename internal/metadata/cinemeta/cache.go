package cinemeta

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/scavengarr/scavengarr/internal/domain"
)

// cacheEntry is gob-encoded into fastcache, carrying its own creation
// time since fastcache has no native per-key expiry.
type cacheEntry struct {
	Created time.Time
	Title   domain.ReferenceTitle
}

const cacheTTL = 24 * time.Hour * 30

func encodeCacheEntry(title domain.ReferenceTitle) ([]byte, error) {
	entry := cacheEntry{Created: time.Now(), Title: title}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return nil, fmt.Errorf("couldn't encode cinemeta cache entry: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeCacheEntry(data []byte) (domain.ReferenceTitle, error) {
	var entry cacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		return domain.ReferenceTitle{}, fmt.Errorf("couldn't decode cinemeta cache entry: %w", err)
	}
	if time.Since(entry.Created) >= cacheTTL {
		return domain.ReferenceTitle{}, fmt.Errorf("cinemeta cache entry expired")
	}
	return entry.Title, nil
}
