package domain

import "time"

// BreakerStateKind is the circuit breaker's three-state machine.
type BreakerStateKind string

const (
	BreakerClosed   BreakerStateKind = "closed"
	BreakerOpen     BreakerStateKind = "open"
	BreakerHalfOpen BreakerStateKind = "half_open"
)

// BreakerState is a read-only snapshot of one adapter's breaker, used
// for diagnostics (e.g. a /status endpoint) — the live state lives
// inside internal/breaker.Registry, guarded by its own locking.
type BreakerState struct {
	AdapterName string
	Failures    int
	OpenedAt    time.Time
	State       BreakerStateKind
}
