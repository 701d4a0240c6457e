// Package cache implements the pluggable cache backends shared by the
// reference-title, search-result, and stream-link caches. Callers only
// need get/set(ttl) with best-effort failure semantics: every backend
// here satisfies Store with gob-encoded []byte payloads so callers
// don't need backend-specific marshaling.
package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"time"
)

// Store is the backend-agnostic cache contract. Get reports a miss on
// any read failure. Set is best-effort: a write failure never fails
// the caller's request.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Close() error
}

// entry is the gob envelope FastStore, BadgerStore and RedisStore store,
// carrying its own expiry so TTL survives backends (like fastcache) that
// have no native per-key expiration. MemStore stores values without it
// and relies on go-cache's own per-item expiry.
type entry struct {
	Value   []byte
	Expires time.Time
}

func encodeEntry(value []byte, ttl time.Duration) ([]byte, error) {
	e := entry{Value: value}
	if ttl > 0 {
		e.Expires = time.Now().Add(ttl)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, fmt.Errorf("cache: encode entry: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeEntry(raw []byte) ([]byte, bool) {
	var e entry
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&e); err != nil {
		return nil, false
	}
	if !e.Expires.IsZero() && time.Now().After(e.Expires) {
		return nil, false
	}
	return e.Value, true
}

// SetGob/GetGob are thin helpers used by callers that cache
// domain-typed records (ReferenceTitle, search results) via gob rather
// than building their own encode/decode pair per cache.
func SetGob(ctx context.Context, s Store, key string, v interface{}, ttl time.Duration) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return
	}
	s.Set(ctx, key, buf.Bytes(), ttl)
}

func GetGob(ctx context.Context, s Store, key string, dst interface{}) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(dst); err != nil {
		return false
	}
	return true
}
