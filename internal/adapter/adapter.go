// Package adapter defines the Adapter interface every site plugin must
// implement and the Invoker that runs one adapter under its semaphore
// slot, timeout, and breaker update.
package adapter

import (
	"context"
	"time"

	"github.com/scavengarr/scavengarr/internal/domain"
)

// Adapter is what each site plugin must implement. Name must be unique
// and lowercased; the registry keys breakers and caches by it.
type Adapter interface {
	Name() string
	Provides() domain.Provides
	Kind() domain.AdapterKind
	DefaultLanguage() string
	// CacheTTL returns an override of the global search-result TTL, and
	// whether one is configured at all.
	CacheTTL() (time.Duration, bool)
	Search(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error)
}

// Cleanupper is implemented by adapters that hold resources (an open
// browser tab, a pooled connection) needing explicit release on
// shutdown.
type Cleanupper interface {
	Cleanup() error
}
