package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scavengarr/scavengarr/internal/breaker"
	"github.com/scavengarr/scavengarr/internal/cache"
	"github.com/scavengarr/scavengarr/internal/concurrency"
	"github.com/scavengarr/scavengarr/internal/domain"
)

type fakeAdapter struct {
	name string
	kind domain.AdapterKind
	fn   func(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error)
}

func (f fakeAdapter) Name() string                         { return f.name }
func (f fakeAdapter) Provides() domain.Provides             { return domain.ProvidesStream }
func (f fakeAdapter) Kind() domain.AdapterKind               { return f.kind }
func (f fakeAdapter) DefaultLanguage() string                { return "de" }
func (f fakeAdapter) CacheTTL() (time.Duration, bool)        { return 0, false }
func (f fakeAdapter) Search(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
	return f.fn(ctx, q)
}

func newTestInvoker(maxResults int) (*Invoker, *concurrency.Budget) {
	reg := breaker.NewRegistry(3, time.Minute)
	inv := NewInvoker(reg, nil, 0, 200*time.Millisecond, maxResults, nil)
	gov := concurrency.NewGovernor(4, 2, nil)
	budget, _ := gov.RequestBudget(context.Background())
	return inv, budget
}

func TestInvokeReturnsResults(t *testing.T) {
	inv, budget := newTestInvoker(0)
	ad := fakeAdapter{name: "ok", kind: domain.AdapterCheap, fn: func(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
		return []domain.RawSearchResult{{Title: "Iron Man"}}, nil
	}}

	results := inv.Invoke(context.Background(), ad, domain.Query{Text: "iron man"}, budget)
	require.Len(t, results, 1)
	assert.Equal(t, "Iron Man", results[0].Title)
}

func TestInvokeSwallowsErrors(t *testing.T) {
	inv, budget := newTestInvoker(0)
	ad := fakeAdapter{name: "broken", kind: domain.AdapterCheap, fn: func(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
		return nil, errors.New("transport error")
	}}

	results := inv.Invoke(context.Background(), ad, domain.Query{Text: "x"}, budget)
	assert.Empty(t, results)
}

func TestInvokeSwallowsPanics(t *testing.T) {
	inv, budget := newTestInvoker(0)
	ad := fakeAdapter{name: "panics", kind: domain.AdapterCheap, fn: func(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
		panic("scrape exploded")
	}}

	assert.NotPanics(t, func() {
		results := inv.Invoke(context.Background(), ad, domain.Query{Text: "x"}, budget)
		assert.Empty(t, results)
	})
}

func TestInvokeCapsResults(t *testing.T) {
	inv, budget := newTestInvoker(2)
	ad := fakeAdapter{name: "many", kind: domain.AdapterCheap, fn: func(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
		return []domain.RawSearchResult{{Title: "1"}, {Title: "2"}, {Title: "3"}}, nil
	}}

	results := inv.Invoke(context.Background(), ad, domain.Query{Text: "x"}, budget)
	assert.Len(t, results, 2)
}

func TestInvokeRespectsTimeout(t *testing.T) {
	inv, budget := newTestInvoker(0)
	ad := fakeAdapter{name: "slow", kind: domain.AdapterCheap, fn: func(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
		select {
		case <-time.After(time.Second):
			return []domain.RawSearchResult{{Title: "too late"}}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}}

	start := time.Now()
	results := inv.Invoke(context.Background(), ad, domain.Query{Text: "x"}, budget)
	elapsed := time.Since(start)

	assert.Empty(t, results)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestInvokeIsolatesAdapterFailureFromOthers(t *testing.T) {
	reg := breaker.NewRegistry(1, time.Hour)
	inv := NewInvoker(reg, nil, 0, 200*time.Millisecond, 0, nil)
	gov := concurrency.NewGovernor(4, 2, nil)
	budget, _ := gov.RequestBudget(context.Background())

	failing := fakeAdapter{name: "a", kind: domain.AdapterCheap, fn: func(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
		return nil, errors.New("boom")
	}}
	ok := fakeAdapter{name: "b", kind: domain.AdapterCheap, fn: func(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
		return []domain.RawSearchResult{{Title: "fine"}}, nil
	}}

	_ = inv.Invoke(context.Background(), failing, domain.Query{}, budget)
	assert.False(t, reg.Allow("a"))

	results := inv.Invoke(context.Background(), ok, domain.Query{}, budget)
	require.Len(t, results, 1)
	assert.Equal(t, "fine", results[0].Title)
}

func TestInvokeServesSecondCallFromSearchCache(t *testing.T) {
	reg := breaker.NewRegistry(3, time.Minute)
	store := cache.NewMemStore(time.Minute, time.Minute)
	inv := NewInvoker(reg, store, time.Minute, 200*time.Millisecond, 0, nil)
	gov := concurrency.NewGovernor(4, 2, nil)
	budget, _ := gov.RequestBudget(context.Background())

	calls := 0
	ad := fakeAdapter{name: "cached", kind: domain.AdapterCheap, fn: func(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
		calls++
		return []domain.RawSearchResult{{Title: "Iron Man"}}, nil
	}}

	q := domain.Query{Text: "iron man", Category: domain.CategoryMovies}
	first := inv.Invoke(context.Background(), ad, q, budget)
	second := inv.Invoke(context.Background(), ad, q, budget)

	assert.Equal(t, 1, calls)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Title, second[0].Title)
}

func TestInvokeKeysCacheBySeasonAndEpisode(t *testing.T) {
	reg := breaker.NewRegistry(3, time.Minute)
	store := cache.NewMemStore(time.Minute, time.Minute)
	inv := NewInvoker(reg, store, time.Minute, 200*time.Millisecond, 0, nil)
	gov := concurrency.NewGovernor(4, 2, nil)
	budget, _ := gov.RequestBudget(context.Background())

	calls := 0
	ad := fakeAdapter{name: "episodic", kind: domain.AdapterCheap, fn: func(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
		calls++
		return []domain.RawSearchResult{{Title: "Serie"}}, nil
	}}

	one, five := 1, 5
	_ = inv.Invoke(context.Background(), ad, domain.Query{Text: "serie", Season: &one, Episode: &one}, budget)
	_ = inv.Invoke(context.Background(), ad, domain.Query{Text: "serie", Season: &one, Episode: &five}, budget)

	assert.Equal(t, 2, calls)
}
