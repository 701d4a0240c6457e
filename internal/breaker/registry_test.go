package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scavengarr/scavengarr/internal/domain"
)

func TestRegistryOpensOnFailureThreshold(t *testing.T) {
	r := NewRegistry(3, 50*time.Millisecond)
	ctx := context.Background()
	failing := func(context.Context) ([]domain.RawSearchResult, error) {
		return nil, errors.New("boom")
	}

	for i := 0; i < 3; i++ {
		_, err := r.Run(ctx, "flaky", failing)
		assert.Error(t, err)
	}

	assert.False(t, r.Allow("flaky"))
	assert.Equal(t, domain.BreakerOpen, r.State("flaky"))
}

func TestRegistryHalfOpenAfterCooldown(t *testing.T) {
	r := NewRegistry(2, 30*time.Millisecond)
	ctx := context.Background()
	failing := func(context.Context) ([]domain.RawSearchResult, error) {
		return nil, errors.New("boom")
	}

	_, _ = r.Run(ctx, "flaky", failing)
	_, _ = r.Run(ctx, "flaky", failing)
	require.False(t, r.Allow("flaky"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, r.Allow("flaky"))

	// Succeeding once from half-open closes the breaker again.
	_, err := r.Run(ctx, "flaky", func(context.Context) ([]domain.RawSearchResult, error) {
		return []domain.RawSearchResult{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BreakerClosed, r.State("flaky"))
}

func TestRegistryIsolatesAdapters(t *testing.T) {
	r := NewRegistry(1, time.Hour)
	ctx := context.Background()

	_, err := r.Run(ctx, "a", func(context.Context) ([]domain.RawSearchResult, error) {
		return nil, errors.New("a always fails")
	})
	assert.Error(t, err)
	assert.False(t, r.Allow("a"))

	results, err := r.Run(ctx, "b", func(context.Context) ([]domain.RawSearchResult, error) {
		return []domain.RawSearchResult{{Title: "ok"}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.True(t, r.Allow("b"))
}
