package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v2"
	"go.uber.org/zap"

	"github.com/scavengarr/scavengarr/pkg/logadapter"
)

// BadgerStore wraps github.com/dgraph-io/badger/v2, the persistent
// layer beneath the stream-link cache when Redis is not configured, so a
// cached embed URL survives a process restart within its TTL. Each
// BadgerStore scopes its keys to one prefix within a shared *badger.DB.
type BadgerStore struct {
	db        *badger.DB
	keyPrefix string
}

// OpenBadgerStore opens (or creates) a BadgerDB at path, logging
// through the Badger2Zap bridge.
func OpenBadgerStore(path string, logger *zap.Logger) (*badger.DB, error) {
	options := badger.DefaultOptions(path).
		WithLogger(logadapter.NewBadger2Zap(logger)).
		WithLoggingLevel(badger.WARNING).
		WithSyncWrites(false)
	return badger.Open(options)
}

// NewBadgerStore builds a Store scoped to one key prefix within a
// shared *badger.DB.
func NewBadgerStore(db *badger.DB, keyPrefix string) *BadgerStore {
	return &BadgerStore{db: db, keyPrefix: keyPrefix}
}

func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, bool) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(s.keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return nil, false
		}
		return nil, false
	}
	return decodeEntry(raw)
}

func (s *BadgerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	encoded, err := encodeEntry(value, ttl)
	if err != nil {
		return
	}
	_ = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(s.keyPrefix+key), encoded)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

func (s *BadgerStore) Close() error { return nil }

// RunValueLogGC periodically reclaims value-log space. Run it in its
// own goroutine right after opening the DB.
func RunValueLogGC(ctx context.Context, db *badger.DB, discardRatio float64, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		again:
			err := db.RunValueLogGC(discardRatio)
			if err == nil {
				goto again
			}
			if !errors.Is(err, badger.ErrNoRewrite) {
				logger.Warn("BadgerDB value log GC failed", zap.Error(err))
			}
		}
	}
}
