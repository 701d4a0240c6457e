package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scavengarr/scavengarr/internal/domain"
)

type fakeSource struct {
	title domain.ReferenceTitle
	err   error
	calls int
}

func (f *fakeSource) Resolve(ctx context.Context, externalID string, kind domain.Kind) (domain.ReferenceTitle, error) {
	f.calls++
	if f.err != nil {
		return domain.ReferenceTitle{}, f.err
	}
	return f.title, nil
}

type memCache struct {
	entries map[string]domain.ReferenceTitle
}

func newMemCache() *memCache { return &memCache{entries: map[string]domain.ReferenceTitle{}} }

func (m *memCache) Get(ctx context.Context, key string) (domain.ReferenceTitle, bool) {
	title, ok := m.entries[key]
	return title, ok
}

func (m *memCache) Set(ctx context.Context, key string, title domain.ReferenceTitle) {
	m.entries[key] = title
}

func TestResolverUsesPrimaryOnSuccess(t *testing.T) {
	primary := &fakeSource{title: domain.ReferenceTitle{Title: "Das Boot", Year: 1981}}
	secondary := &fakeSource{title: domain.ReferenceTitle{Title: "wrong", Year: 0}}
	r := NewResolver(primary, secondary, nil, nil)

	title, err := r.Resolve(context.Background(), "tt0082096", domain.KindMovie)
	require.NoError(t, err)
	assert.Equal(t, "Das Boot", title.Title)
	assert.Equal(t, 0, secondary.calls)
}

func TestResolverFallsBackToSecondary(t *testing.T) {
	primary := &fakeSource{err: errors.New("gRPC unavailable")}
	secondary := &fakeSource{title: domain.ReferenceTitle{Title: "Das Boot", Year: 1981}}
	r := NewResolver(primary, secondary, nil, nil)

	title, err := r.Resolve(context.Background(), "tt0082096", domain.KindMovie)
	require.NoError(t, err)
	assert.Equal(t, "Das Boot", title.Title)
}

func TestResolverReturnsErrMetadataMissingWhenBothFail(t *testing.T) {
	primary := &fakeSource{err: errors.New("down")}
	secondary := &fakeSource{err: errors.New("also down")}
	r := NewResolver(primary, secondary, nil, nil)

	_, err := r.Resolve(context.Background(), "tt0082096", domain.KindMovie)
	assert.ErrorIs(t, err, domain.ErrMetadataMissing)
}

func TestResolverHitsCacheBeforePrimary(t *testing.T) {
	primary := &fakeSource{title: domain.ReferenceTitle{Title: "should not be used", Year: 1}}
	cache := newMemCache()
	r := NewResolver(primary, nil, cache, nil)

	cache.Set(context.Background(), cacheKeyFor("tt0082096", domain.KindMovie), domain.ReferenceTitle{Title: "Das Boot", Year: 1981})

	title, err := r.Resolve(context.Background(), "tt0082096", domain.KindMovie)
	require.NoError(t, err)
	assert.Equal(t, "Das Boot", title.Title)
	assert.Equal(t, 0, primary.calls)
}

func TestIsFallbackIDAndParse(t *testing.T) {
	assert.True(t, IsFallbackID("tmdb:603"))
	assert.False(t, IsFallbackID("tt0133093"))

	id, ok := ParseFallbackID("tmdb:603")
	require.True(t, ok)
	assert.Equal(t, 603, id)

	_, ok = ParseFallbackID("tt0133093")
	assert.False(t, ok)
}
