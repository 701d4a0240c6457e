// Package breaker holds one circuit breaker per adapter name, built
// lazily under a read-mostly registry map. A breaker opens after a run
// of consecutive failures, skips the adapter without I/O while open,
// and allows a single trial call once the cooldown has elapsed.
package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/scavengarr/scavengarr/internal/domain"
)

// Registry holds one breaker per adapter name. Reads (Allow) happen far
// more often than writes (the first call for a never-seen adapter name),
// so the map is guarded by a sync.RWMutex.
type Registry struct {
	mu               sync.RWMutex
	breakers         map[string]*gobreaker.CircuitBreaker[[]domain.RawSearchResult]
	failureThreshold uint32
	cooldown         time.Duration
}

// NewRegistry builds an empty registry. Breakers are created on first
// use, one per distinct adapter name.
func NewRegistry(failureThreshold int, cooldown time.Duration) *Registry {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &Registry{
		breakers:         make(map[string]*gobreaker.CircuitBreaker[[]domain.RawSearchResult]),
		failureThreshold: uint32(failureThreshold),
		cooldown:         cooldown,
	}
}

func (r *Registry) breakerFor(name string) *gobreaker.CircuitBreaker[[]domain.RawSearchResult] {
	r.mu.RLock()
	b, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check: another goroutine may have created it while we waited
	// for the write lock.
	if b, ok := r.breakers[name]; ok {
		return b
	}

	threshold := r.failureThreshold
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1, // exactly one trial call allowed in half-open
		Timeout:     r.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}
	b = gobreaker.NewCircuitBreaker[[]domain.RawSearchResult](settings)
	r.breakers[name] = b
	return b
}

// Allow reports whether the adapter may currently run. It performs no
// I/O and never blocks: an open breaker returns false immediately.
func (r *Registry) Allow(name string) bool {
	return r.breakerFor(name).State() != gobreaker.StateOpen
}

// Run executes fn under the named adapter's breaker, recording success
// or failure. No lock is held across fn's execution; the breaker's own
// internal locking updates failure state only at completion.
func (r *Registry) Run(ctx context.Context, name string, fn func(context.Context) ([]domain.RawSearchResult, error)) ([]domain.RawSearchResult, error) {
	b := r.breakerFor(name)
	return b.Execute(func() ([]domain.RawSearchResult, error) {
		return fn(ctx)
	})
}

// State returns a diagnostic snapshot of one adapter's breaker, used by
// a status endpoint. Returns domain.BreakerClosed for adapters never
// seen before (no breaker exists yet, which is equivalent to closed).
func (r *Registry) State(name string) domain.BreakerStateKind {
	r.mu.RLock()
	b, ok := r.breakers[name]
	r.mu.RUnlock()
	if !ok {
		return domain.BreakerClosed
	}
	switch b.State() {
	case gobreaker.StateOpen:
		return domain.BreakerOpen
	case gobreaker.StateHalfOpen:
		return domain.BreakerHalfOpen
	default:
		return domain.BreakerClosed
	}
}
