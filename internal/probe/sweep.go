// Package probe is the optional liveness stage: a bounded-concurrency
// HEAD sweep over normalized streams that drops dead links before they
// ever reach the client. Sweep gives each probe its own timeout and caps
// how many probes run at once at the concurrency it is passed.
package probe

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/scavengarr/scavengarr/internal/domain"
)

// Prober issues the actual network HEAD request. Exists so tests can
// substitute a fake prober without starting real servers.
type Prober interface {
	Probe(ctx context.Context, url string) bool
}

// HTTPProber is the production Prober, a thin HEAD-request wrapper.
type HTTPProber struct {
	Client *http.Client
}

func NewHTTPProber(timeout time.Duration) *HTTPProber {
	return &HTTPProber{Client: &http.Client{Timeout: timeout}}
}

func (p *HTTPProber) Probe(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	res, err := p.Client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return res.StatusCode >= 200 && res.StatusCode < 400
}

// result carries a probed stream's original index, so survivors can
// be re-ordered back to their pre-probe position.
type result struct {
	index int
	alive bool
}

// Sweep probes up to maxProbeCount of streams (already dedupe/scored,
// so the "first N" is the best N) through a concurrency-bounded
// semaphore, in place of issuing unbounded concurrent requests. Streams
// beyond maxProbeCount pass through unprobed. Order is preserved among
// survivors.
func Sweep(ctx context.Context, streams []domain.RankedStream, prober Prober, concurrency, maxProbeCount int, timeout time.Duration, logger *zap.Logger) []domain.RankedStream {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(streams) == 0 {
		return streams
	}

	probeCount := maxProbeCount
	if probeCount > len(streams) {
		probeCount = len(streams)
	}
	toProbe := streams[:probeCount]
	passthrough := streams[probeCount:]

	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	resChan := make(chan result, len(toProbe))

	for i, rs := range toProbe {
		sem <- struct{}{}
		go func(idx int, url string) {
			defer func() { <-sem }()
			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			alive := prober.Probe(probeCtx, url)
			if !alive {
				logger.Debug("probe failed, dropping stream", zap.String("url", url))
			}
			resChan <- result{index: idx, alive: alive}
		}(i, rs.URL)
	}

	alive := make([]bool, len(toProbe))
	for range toProbe {
		r := <-resChan
		alive[r.index] = r.alive
	}

	survivors := make([]domain.RankedStream, 0, len(streams))
	for i, rs := range toProbe {
		if alive[i] {
			survivors = append(survivors, rs)
		}
	}
	survivors = append(survivors, passthrough...)
	return survivors
}
