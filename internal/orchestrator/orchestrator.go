// Package orchestrator ties the governor, breakers, invoker, metadata
// resolver, filters, scorer, probe, hoster resolvers, and stream-link
// cache into a single ResolveStreams pipeline.
package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/scavengarr/scavengarr/internal/adapter"
	"github.com/scavengarr/scavengarr/internal/concurrency"
	"github.com/scavengarr/scavengarr/internal/config"
	"github.com/scavengarr/scavengarr/internal/domain"
	"github.com/scavengarr/scavengarr/internal/filter"
	"github.com/scavengarr/scavengarr/internal/hoster"
	"github.com/scavengarr/scavengarr/internal/metadata"
	"github.com/scavengarr/scavengarr/internal/probe"
	"github.com/scavengarr/scavengarr/internal/query"
	"github.com/scavengarr/scavengarr/internal/stream"
	"github.com/scavengarr/scavengarr/internal/streamlink"
)

// Orchestrator carries every collaborator ResolveStreams needs.
type Orchestrator struct {
	governor  *concurrency.Governor
	invoker   *adapter.Invoker
	resolver  *metadata.Resolver
	hosters   *hoster.Registry
	links     *streamlink.Store
	adapters  []adapter.Adapter
	prober    probe.Prober
	rootURL   string
	cfg       config.AppConfig
	logger    *zap.Logger
}

// New builds an Orchestrator from its collaborators. rootURL is the
// externally reachable base URL used to build /play/{opaque_id} URLs.
func New(
	governor *concurrency.Governor,
	invoker *adapter.Invoker,
	resolver *metadata.Resolver,
	hosters *hoster.Registry,
	links *streamlink.Store,
	adapters []adapter.Adapter,
	prober probe.Prober,
	rootURL string,
	cfg config.AppConfig,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		governor: governor,
		invoker:  invoker,
		resolver: resolver,
		hosters:  hosters,
		links:    links,
		adapters: adapters,
		prober:   prober,
		rootURL:  strings.TrimRight(rootURL, "/"),
		cfg:      cfg,
		logger:   logger,
	}
}

// ResolveStreams runs the full pipeline for one request. It never
// returns an error: every failure mode collapses to an empty slice,
// which is the normal failure mode the clients expect.
func (o *Orchestrator) ResolveStreams(ctx context.Context, req domain.StreamRequest) []domain.ClientStream {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("orchestrator panic recovered, returning empty list", zap.Any("panic", r))
		}
	}()

	budget, err := o.governor.RequestBudget(ctx)
	if err != nil {
		return nil
	}

	ref, err := o.resolver.Resolve(ctx, req.ExternalID, req.Kind)
	if err != nil {
		o.logger.Debug("no reference title resolved", zap.String("externalID", req.ExternalID), zap.Error(err))
		return nil
	}

	queries := query.Build(ref.Title)
	category := categoryFor(req.Kind)

	raw := o.fanOut(ctx, queries, category, req, budget)

	raw = filter.Episode(req, raw)
	raw = filter.Filter(ref, raw, o.cfg.TitleMatch)

	streams := o.normalizeAll(raw)
	streams = stream.ScoreAndDedupe(streams, o.cfg.Scoring)

	if o.cfg.ProbeAtStreamTime && o.prober != nil {
		streams = probe.Sweep(ctx, streams, o.prober, o.cfg.Stremio.ProbeConcurrency, o.cfg.MaxProbeCount, o.cfg.ProbeTimeout, o.logger)
	}

	return o.finalize(ctx, ref, req, streams)
}

// SearchRaw runs every adapter for one free-text query without the rest
// of the pipeline (no metadata resolution, no title-match filtering, no
// scoring) — the shape a Torznab client (Sonarr/Radarr/Prowlarr) needs,
// since it does its own candidate matching over the returned feed.
//
// Unlike ResolveStreams, SearchRaw returns an error: a non-nil error
// here means the request never ran at all (the governor could not grant
// a budget, usually because ctx was already cancelled), which the
// Torznab handler's dev/prod policy needs to distinguish from the
// ordinary, non-error case of adapters simply finding nothing.
func (o *Orchestrator) SearchRaw(ctx context.Context, text string, category domain.TorznabCategory, season, episode *int) ([]domain.RawSearchResult, error) {
	budget, err := o.governor.RequestBudget(ctx)
	if err != nil {
		return nil, err
	}
	req := domain.StreamRequest{Season: season, Episode: episode}
	raw := o.fanOut(ctx, []string{text}, category, req, budget)
	return filter.Episode(req, raw), nil
}

// fanOut runs every adapter across the built queries, short-circuiting
// the fallback query for an adapter once its first query yields any
// results.
func (o *Orchestrator) fanOut(ctx context.Context, queries []string, category domain.TorznabCategory, req domain.StreamRequest, budget *concurrency.Budget) []domain.RawSearchResult {
	var wg sync.WaitGroup
	resultsCh := make(chan []domain.RawSearchResult, len(o.adapters))

	for _, ad := range o.adapters {
		wg.Add(1)
		go func(ad adapter.Adapter) {
			defer wg.Done()
			resultsCh <- o.searchOneAdapter(ctx, ad, queries, category, req, budget)
		}(ad)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var all []domain.RawSearchResult
	for results := range resultsCh {
		all = append(all, results...)
	}
	return all
}

func (o *Orchestrator) searchOneAdapter(ctx context.Context, ad adapter.Adapter, queries []string, category domain.TorznabCategory, req domain.StreamRequest, budget *concurrency.Budget) []domain.RawSearchResult {
	for i, q := range queries {
		results := o.invoker.Invoke(ctx, ad, domain.Query{
			Text:     q,
			Category: category,
			Season:   req.Season,
			Episode:  req.Episode,
		}, budget)
		nonFiltered := validResults(results)
		if len(nonFiltered) > 0 || i == len(queries)-1 {
			tagSourceAdapter(nonFiltered, ad.Name())
			return nonFiltered
		}
	}
	return nil
}

// tagSourceAdapter stamps each result's Metadata with the adapter that
// produced it, so later stages (normalize, display
// formatting) can attribute a stream back to its source without
// threading an extra parameter through every function.
func tagSourceAdapter(results []domain.RawSearchResult, adapterName string) {
	for i := range results {
		if results[i].Metadata == nil {
			results[i].Metadata = make(map[string]string, 1)
		}
		results[i].Metadata["source_adapter"] = adapterName
	}
}

func validResults(results []domain.RawSearchResult) []domain.RawSearchResult {
	kept := make([]domain.RawSearchResult, 0, len(results))
	for _, r := range results {
		if r.Valid() {
			kept = append(kept, r)
		}
	}
	return kept
}

func (o *Orchestrator) normalizeAll(raw []domain.RawSearchResult) []domain.RankedStream {
	var streams []domain.RankedStream
	for _, r := range raw {
		defaultLang := "de"
		if ad := o.adapterNamed(r.Metadata["source_adapter"]); ad != nil {
			defaultLang = ad.DefaultLanguage()
		}
		streams = append(streams, stream.NormalizeAll(r, r.Metadata["source_adapter"], defaultLang)...)
	}
	return streams
}

func (o *Orchestrator) adapterNamed(name string) adapter.Adapter {
	for _, ad := range o.adapters {
		if ad.Name() == name {
			return ad
		}
	}
	return nil
}

func categoryFor(kind domain.Kind) domain.TorznabCategory {
	if kind == domain.KindSeries {
		return domain.CategoryTV
	}
	return domain.CategoryMovies
}

// finalize resolves each surviving stream to a playable URL (hoster
// resolver, or the proxy-play fallback when none is registered) and
// formats its display fields, through a bounded worker pool sized from
// validationMaxConcurrent. This pool is independent of the
// cheap/expensive governor slots: resolving N already-selected hoster
// links is a fixed, bursty amount of work rather than an
// adapter-proportional one. Order is preserved among survivors.
func (o *Orchestrator) finalize(ctx context.Context, ref domain.ReferenceTitle, req domain.StreamRequest, streams []domain.RankedStream) []domain.ClientStream {
	if len(streams) == 0 {
		return nil
	}

	workers := o.cfg.ValidationMaxConcurrent
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	type slot struct {
		cs domain.ClientStream
		ok bool
	}
	slots := make([]slot, len(streams))

	var wg sync.WaitGroup
	for i, rs := range streams {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, rs domain.RankedStream) {
			defer wg.Done()
			defer func() { <-sem }()
			cs, ok := o.finalizeOne(ctx, ref, req, rs)
			slots[idx] = slot{cs: cs, ok: ok}
		}(i, rs)
	}
	wg.Wait()

	clientStreams := make([]domain.ClientStream, 0, len(streams))
	for _, s := range slots {
		if s.ok {
			clientStreams = append(clientStreams, s.cs)
		}
	}
	return clientStreams
}

func (o *Orchestrator) finalizeOne(ctx context.Context, ref domain.ReferenceTitle, req domain.StreamRequest, rs domain.RankedStream) (domain.ClientStream, bool) {
	var url string
	var hints *domain.BehaviorHints

	if o.hosters != nil && o.hosters.Has(rs.HosterNormalized) {
		resolved, err := o.hosters.Resolve(ctx, rs.URL, rs.HosterNormalized)
		if err != nil || !hoster.IsPlayable(rs.URL, resolved) {
			return domain.ClientStream{}, false
		}
		url = resolved.VideoURL
		if len(resolved.Headers) > 0 {
			hints = &domain.BehaviorHints{
				NotWebReady:  true,
				ProxyHeaders: &domain.ProxyHeaders{Request: resolved.Headers},
			}
		}
	} else {
		link := o.links.Put(ctx, rs.URL, rs.Title, rs.HosterNormalized)
		url = o.rootURL + "/play/" + link.OpaqueID
	}

	return domain.ClientStream{
		DisplayName:   displayName(ref, req, rs),
		Description:   description(rs),
		URL:           url,
		BehaviorHints: hints,
	}, true
}

// displayName prefers
// "reference_title (year) QUALITY", append SxxEyy for series, and fall
// back through release_name then raw title when no reference resolved.
func displayName(ref domain.ReferenceTitle, req domain.StreamRequest, rs domain.RankedStream) string {
	var b strings.Builder
	if ref.Title != "" {
		b.WriteString(ref.Title)
		if ref.HasYear() {
			fmt.Fprintf(&b, " (%d)", ref.Year)
		}
		if rs.Quality != domain.QualityUnknown {
			b.WriteString(" " + rs.Quality.String())
		}
	} else if rs.ReleaseName != "" {
		b.WriteString(rs.ReleaseName)
	} else {
		b.WriteString(rs.Title)
	}

	if req.Kind == domain.KindSeries {
		if season, episode := req.SeasonEpisode(); season >= 0 && episode >= 0 {
			fmt.Fprintf(&b, " S%sE%s", pad2(season), pad2(episode))
		}
	}
	return b.String()
}

func pad2(n int) string {
	s := strconv.Itoa(n)
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

// description joins source adapter, language label, uppercase hoster,
// and size with "|", source adapter always first when present.
func description(rs domain.RankedStream) string {
	var parts []string
	if rs.SourceAdapter != "" {
		parts = append(parts, rs.SourceAdapter)
	}
	if rs.Language.Label != "" {
		parts = append(parts, rs.Language.Label)
	}
	if rs.HosterNormalized != "" {
		parts = append(parts, strings.ToUpper(rs.HosterNormalized))
	}
	if rs.Size != "" {
		parts = append(parts, rs.Size)
	}
	return strings.Join(parts, "|")
}
