package adapter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scavengarr/scavengarr/internal/breaker"
	"github.com/scavengarr/scavengarr/internal/cache"
	"github.com/scavengarr/scavengarr/internal/concurrency"
	"github.com/scavengarr/scavengarr/internal/domain"
)

// Invoker runs individual adapter calls. One Invoker is shared by the
// orchestrator across all adapters and all requests; it owns no
// per-adapter state itself (that lives in the breaker Registry).
type Invoker struct {
	breakers            *breaker.Registry
	searchCache         cache.Store
	searchTTL           time.Duration
	pluginTimeout       time.Duration
	maxResultsPerPlugin int
	logger              *zap.Logger
}

// NewInvoker builds an Invoker. searchCache may be nil (no caching);
// searchTTL is the default TTL for cached search results, which an
// adapter's own CacheTTL overrides. pluginTimeout bounds every adapter
// call; maxResultsPerPlugin caps successful results before they reach
// later pipeline stages.
func NewInvoker(breakers *breaker.Registry, searchCache cache.Store, searchTTL, pluginTimeout time.Duration, maxResultsPerPlugin int, logger *zap.Logger) *Invoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{
		breakers:            breakers,
		searchCache:         searchCache,
		searchTTL:           searchTTL,
		pluginTimeout:       pluginTimeout,
		maxResultsPerPlugin: maxResultsPerPlugin,
		logger:              logger,
	}
}

// Invoke runs one adapter with its semaphore slot, timeout, and breaker
// update. It never returns an error to the caller: every failure mode
// (breaker open, timeout, transport error, panic) results in an empty
// slice. Adapter failures are never surfaced to the client.
func (inv *Invoker) Invoke(ctx context.Context, ad Adapter, q domain.Query, budget *concurrency.Budget) []domain.RawSearchResult {
	name := ad.Name()
	logger := inv.logger.With(zap.String("adapter", name))

	key := searchKey(name, q)
	if inv.searchCache != nil {
		var cached []domain.RawSearchResult
		if cache.GetGob(ctx, inv.searchCache, key, &cached) {
			logger.Debug("search cache hit", zap.String("query", q.Text))
			return cached
		}
	}

	if !inv.breakers.Allow(name) {
		logger.Debug("breaker open, skipping adapter without I/O")
		return nil
	}

	release, err := budget.AcquireByKind(ctx, ad.Kind())
	if err != nil {
		logger.Debug("budget acquisition cancelled", zap.Error(err))
		return nil
	}
	defer release()

	callCtx, cancel := inv.boundedContext(ctx)
	defer cancel()

	results, err := inv.breakers.Run(callCtx, name, func(callCtx context.Context) (results []domain.RawSearchResult, callErr error) {
		defer func() {
			if r := recover(); r != nil {
				callErr = fmt.Errorf("%w: adapter %q panicked: %v", domain.ErrAdapterFailure, name, r)
			}
		}()
		return ad.Search(callCtx, q)
	})
	if err != nil {
		logger.Debug("adapter call failed, swallowing", zap.Error(err))
		return nil
	}

	if inv.maxResultsPerPlugin > 0 && len(results) > inv.maxResultsPerPlugin {
		results = results[:inv.maxResultsPerPlugin]
	}

	if inv.searchCache != nil {
		ttl := inv.searchTTL
		if override, ok := ad.CacheTTL(); ok {
			ttl = override
		}
		cache.SetGob(ctx, inv.searchCache, key, results, ttl)
	}
	return results
}

// searchKey builds the cache key for one (adapter, query) pair. Season
// and episode are part of the key since adapters narrow their output by
// them.
func searchKey(adapterName string, q domain.Query) string {
	key := fmt.Sprintf("search:%s:%d:%s", adapterName, q.Category, q.Text)
	if q.Season != nil {
		key += fmt.Sprintf(":s%d", *q.Season)
	}
	if q.Episode != nil {
		key += fmt.Sprintf(":e%d", *q.Episode)
	}
	return key
}

// boundedContext derives a per-call context bounded by min(pluginTimeout,
// time until ctx's own deadline).
func (inv *Invoker) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if inv.pluginTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < inv.pluginTimeout {
			return context.WithCancel(ctx)
		}
	}
	return context.WithTimeout(ctx, inv.pluginTimeout)
}
