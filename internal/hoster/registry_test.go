package hoster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scavengarr/scavengarr/internal/domain"
)

func TestRegistryHasAndResolve(t *testing.T) {
	r := NewRegistry(nil)
	assert.False(t, r.Has("rapidgator"))

	r.Register("rapidgator", func(ctx context.Context, embedURL, hosterName string) (domain.ResolvedStream, error) {
		return domain.ResolvedStream{VideoURL: "https://cdn.example.com/file.mp4"}, nil
	})

	assert.True(t, r.Has("rapidgator"))
	resolved, err := r.Resolve(context.Background(), "https://rapidgator.net/embed", "rapidgator")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/file.mp4", resolved.VideoURL)
}

func TestResolveReturnsErrNoResolverWhenUnconfigured(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Resolve(context.Background(), "https://x.example.com", "unknown")
	assert.ErrorIs(t, err, ErrNoResolver)
}

func TestResolvePropagatesResolverError(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("flaky", func(ctx context.Context, embedURL, hosterName string) (domain.ResolvedStream, error) {
		return domain.ResolvedStream{}, errors.New("upstream down")
	})
	_, err := r.Resolve(context.Background(), "https://x.example.com", "flaky")
	assert.Error(t, err)
}

func TestIsPlayableHLS(t *testing.T) {
	assert.True(t, IsPlayable("https://embed", domain.ResolvedStream{IsHLS: true}))
}

func TestIsPlayableKnownExtension(t *testing.T) {
	assert.True(t, IsPlayable("https://embed", domain.ResolvedStream{VideoURL: "https://cdn/a.mp4"}))
	assert.True(t, IsPlayable("https://embed", domain.ResolvedStream{VideoURL: "https://cdn/a.m3u8"}))
}

func TestIsPlayableDifferentURLWithHeaders(t *testing.T) {
	resolved := domain.ResolvedStream{
		VideoURL: "https://cdn/opaque-id",
		Headers:  map[string]string{"Referer": "https://embed"},
	}
	assert.True(t, IsPlayable("https://embed", resolved))
}

func TestIsPlayableEchoIsDropped(t *testing.T) {
	resolved := domain.ResolvedStream{VideoURL: "https://embed"}
	assert.False(t, IsPlayable("https://embed", resolved))
}

func TestIsPlayableDifferentURLWithoutHeadersIsDropped(t *testing.T) {
	resolved := domain.ResolvedStream{VideoURL: "https://cdn/opaque-id"}
	assert.False(t, IsPlayable("https://embed", resolved))
}
