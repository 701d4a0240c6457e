// Package concurrency implements the concurrency governor: two counting
// semaphores, "cheap" and "expensive", sized from config at process
// start and handed out to adapters as a per-request Budget.
package concurrency

import (
	"context"
	"sync"

	"github.com/scavengarr/scavengarr/internal/domain"
)

// semaphore is a counting semaphore built on a buffered channel.
type semaphore chan struct{}

func newSemaphore(n int) semaphore {
	return make(semaphore, n)
}

// acquire blocks until a slot is free or ctx is done. It returns a
// release function that must be called exactly once, usually deferred.
// release is not guarded: every call takes one token off the channel, so
// a second call frees a slot another holder took, or blocks if none is
// held.
func (s semaphore) acquire(ctx context.Context) (func(), error) {
	select {
	case s <- struct{}{}:
		return func() { <-s }, nil
	case <-ctx.Done():
		return nil, domain.ErrBudgetCancelled
	}
}

// Governor owns the two process-wide semaphores. One Governor is built
// at startup and shared by every request; RequestBudget never resizes
// the pools, it only hands out Budget handles.
type Governor struct {
	cheap     semaphore
	expensive semaphore

	warmupOnce sync.Once
	warmupFn   func(context.Context) error
	warmupErr  error
}

// NewGovernor builds a Governor with the given slot counts. warmup, if
// non-nil, is called exactly once by the first caller to acquire an
// expensive slot, amortising a shared headless-browser instance's cold
// start across adapters.
func NewGovernor(cheapSlots, expensiveSlots int, warmup func(context.Context) error) *Governor {
	return &Governor{
		cheap:     newSemaphore(cheapSlots),
		expensive: newSemaphore(expensiveSlots),
		warmupFn:  warmup,
	}
}

// RequestBudget grants a new Budget handle for one incoming request. It
// never blocks itself — the blocking happens at AcquireCheap/
// AcquireExpensive time, once an adapter actually needs a slot.
func (g *Governor) RequestBudget(ctx context.Context) (*Budget, error) {
	select {
	case <-ctx.Done():
		return nil, domain.ErrBudgetCancelled
	default:
	}
	return &Budget{governor: g, ctx: ctx}, nil
}

// ensureWarm runs the configured warm-up hook at most once for the
// lifetime of the Governor, regardless of how many goroutines call it
// concurrently — sync.Once makes this idempotent and concurrency-safe.
func (g *Governor) ensureWarm(ctx context.Context) error {
	if g.warmupFn == nil {
		return nil
	}
	g.warmupOnce.Do(func() {
		g.warmupErr = g.warmupFn(ctx)
	})
	return g.warmupErr
}

// Budget is the per-request handle an Orchestrator acquires once and
// adapters draw slots from. A single adapter invocation acquires at
// most one slot at a time (the Invoker enforces this by construction:
// it calls exactly one of AcquireCheap/AcquireExpensive per Invoke).
type Budget struct {
	governor *Governor
	ctx      context.Context
}

// AcquireCheap blocks until a cheap-pool slot is available or the
// request's context is done. The returned release func must be
// deferred by the caller on every exit path, including panics.
func (b *Budget) AcquireCheap(ctx context.Context) (func(), error) {
	return b.governor.cheap.acquire(ctx)
}

// AcquireExpensive blocks until an expensive-pool slot is available,
// running the Governor's warm-up hook (if any) before the first caller
// proceeds.
func (b *Budget) AcquireExpensive(ctx context.Context) (func(), error) {
	release, err := b.governor.expensive.acquire(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.governor.ensureWarm(ctx); err != nil {
		release()
		return nil, err
	}
	return release, nil
}

// AcquireByKind dispatches to AcquireCheap or AcquireExpensive based on
// an adapter's declared kind.
func (b *Budget) AcquireByKind(ctx context.Context, kind domain.AdapterKind) (func(), error) {
	if kind == domain.AdapterExpensive {
		return b.AcquireExpensive(ctx)
	}
	return b.AcquireCheap(ctx)
}
