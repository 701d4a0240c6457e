package concurrency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scavengarr/scavengarr/internal/domain"
)

func TestGovernorLimitsConcurrency(t *testing.T) {
	g := NewGovernor(2, 1, nil)
	ctx := context.Background()
	budget, err := g.RequestBudget(ctx)
	require.NoError(t, err)

	var inFlight int32
	var maxInFlight int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := budget.AcquireCheap(ctx)
			require.NoError(t, err)
			defer release()

			n := atomic.AddInt32(&inFlight, 1)
			for {
				cur := atomic.LoadInt32(&maxInFlight)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInFlight, cur, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxInFlight, int32(2))
}

func TestGovernorWarmupRunsOnce(t *testing.T) {
	var calls int32
	g := NewGovernor(1, 2, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	ctx := context.Background()
	budget, err := g.RequestBudget(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := budget.AcquireExpensive(ctx)
			require.NoError(t, err)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestBudgetAcquireCancelled(t *testing.T) {
	g := NewGovernor(1, 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	budget, err := g.RequestBudget(ctx)
	require.NoError(t, err)

	release, err := budget.AcquireCheap(ctx)
	require.NoError(t, err)
	defer release()

	cancel()
	_, err = budget.AcquireCheap(ctx)
	assert.ErrorIs(t, err, domain.ErrBudgetCancelled)
}
