package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore wraps github.com/go-redis/redis/v8, the remote cache
// backend for multi-instance deployments. Configured via
// AppConfig.RedisAddr; when unset, the composition root backs the
// stream-link cache with a BadgerStore instead.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisStore(addr, keyPrefix string) *RedisStore {
	return &RedisStore{
		client:    redis.NewClient(&redis.Options{Addr: addr}),
		keyPrefix: keyPrefix,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return decodeEntry(raw)
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	encoded, err := encodeEntry(value, ttl)
	if err != nil {
		return
	}
	// Redis natively expires the key too, belt-and-braces with the
	// envelope's own Expires field for backends that don't.
	s.client.Set(ctx, s.keyPrefix+key, encoded, ttl)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
