// Package hoster is the registry of per-hoster resolver functions that
// turn a HosterLink's embed page URL into a playable ResolvedStream.
package hoster

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/scavengarr/scavengarr/internal/domain"
)

// ErrNoResolver is returned when no Resolver is registered for a
// hoster name — callers route the stream through proxy-play instead
// of treating this as a resolution failure.
var ErrNoResolver = errors.New("hoster: no resolver configured")

// Resolver turns one hoster's embed URL into a resolved, playable
// stream. hosterName is the normalized name the stream was scored under.
type Resolver func(ctx context.Context, embedURL, hosterName string) (domain.ResolvedStream, error)

// Registry maps normalized hoster name to its Resolver. Read-mostly
// after startup registration, so a sync.RWMutex guards it even though
// in practice all registrations happen once during composition.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
	logger    *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{resolvers: make(map[string]Resolver), logger: logger}
}

// Register installs resolver for hosterName, overwriting any existing
// registration — composition roots call this once per configured
// hoster account at startup.
func (r *Registry) Register(hosterName string, resolver Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[hosterName] = resolver
}

// Has reports whether a resolver is configured for hosterName.
func (r *Registry) Has(hosterName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.resolvers[hosterName]
	return ok
}

// Resolve runs the registered resolver for hosterName, if any. Callers
// must check Has first when they need to distinguish "no resolver
// configured" (route through proxy-play instead) from "resolver
// configured but call failed".
func (r *Registry) Resolve(ctx context.Context, embedURL, hosterName string) (domain.ResolvedStream, error) {
	r.mu.RLock()
	resolver, ok := r.resolvers[hosterName]
	r.mu.RUnlock()
	if !ok {
		return domain.ResolvedStream{}, ErrNoResolver
	}
	resolved, err := resolver(ctx, embedURL, hosterName)
	if err != nil {
		r.logger.Debug("hoster resolver failed", zap.String("hoster", hosterName), zap.Error(err))
		return domain.ResolvedStream{}, err
	}
	return resolved, nil
}

var knownVideoExtensions = []string{".mp4", ".m3u8", ".mkv", ".ts", ".webm"}

// IsPlayable implements the echo rule: some XFS-family hoster
// pages just validate the embed page and echo its own URL back, which
// would spin the client forever. A resolved stream must show some
// positive evidence of actually being a media endpoint.
func IsPlayable(embedURL string, resolved domain.ResolvedStream) bool {
	if resolved.IsHLS {
		return true
	}
	lowered := strings.ToLower(resolved.VideoURL)
	for _, ext := range knownVideoExtensions {
		if strings.HasSuffix(lowered, ext) {
			return true
		}
	}
	return resolved.VideoURL != embedURL && len(resolved.Headers) > 0
}
