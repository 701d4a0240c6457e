package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scavengarr/scavengarr/internal/adapter"
	"github.com/scavengarr/scavengarr/internal/breaker"
	"github.com/scavengarr/scavengarr/internal/cache"
	"github.com/scavengarr/scavengarr/internal/concurrency"
	"github.com/scavengarr/scavengarr/internal/config"
	"github.com/scavengarr/scavengarr/internal/domain"
	"github.com/scavengarr/scavengarr/internal/hoster"
	"github.com/scavengarr/scavengarr/internal/metadata"
	"github.com/scavengarr/scavengarr/internal/streamlink"
)

// fakeAdapter is a minimal adapter.Adapter returning one canned result.
type fakeAdapter struct {
	name    string
	results []domain.RawSearchResult
	err     error
}

func (a *fakeAdapter) Name() string                          { return a.name }
func (a *fakeAdapter) Provides() domain.Provides              { return domain.ProvidesStream }
func (a *fakeAdapter) Kind() domain.AdapterKind                { return domain.AdapterCheap }
func (a *fakeAdapter) DefaultLanguage() string                { return "de" }
func (a *fakeAdapter) CacheTTL() (time.Duration, bool)        { return 0, false }
func (a *fakeAdapter) Search(ctx context.Context, q domain.Query) ([]domain.RawSearchResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.results, nil
}

// fakeSource is a metadata.Source returning a canned ReferenceTitle.
type fakeSource struct {
	title domain.ReferenceTitle
	err   error
}

func (s *fakeSource) Resolve(ctx context.Context, externalID string, kind domain.Kind) (domain.ReferenceTitle, error) {
	if s.err != nil {
		return domain.ReferenceTitle{}, s.err
	}
	return s.title, nil
}

func testConfig() config.AppConfig {
	return config.AppConfig{
		ValidationMaxConcurrent: 4,
		TitleMatch: config.TitleMatchConfig{
			Threshold: 0,
		},
		Scoring: config.ScoringConfig{
			DefaultLanguageScore: 1,
		},
	}
}

func newTestOrchestrator(t *testing.T, adapters []adapter.Adapter, src metadata.Source) *Orchestrator {
	t.Helper()
	governor := concurrency.NewGovernor(2, 1, nil)
	breakers := breaker.NewRegistry(3, time.Minute)
	invoker := adapter.NewInvoker(breakers, nil, 0, time.Second, 0, nil)
	resolver := metadata.NewResolver(src, nil, nil, nil)
	hosters := hoster.NewRegistry(nil)
	links := streamlink.New(cache.NewMemStore(time.Minute, time.Minute), time.Minute)

	return New(governor, invoker, resolver, hosters, links, adapters, nil, "http://localhost", testConfig(), nil)
}

func oneResult() domain.RawSearchResult {
	return domain.RawSearchResult{
		Title: "Der Beispiel Film",
		Links: []domain.HosterLink{
			{HosterName: "streamcloud", URL: "https://streamcloud.example/embed/abc", Quality: "1080p"},
		},
	}
}

func TestResolveStreamsHappyPath(t *testing.T) {
	ad := &fakeAdapter{name: "hdfilme", results: []domain.RawSearchResult{oneResult()}}
	src := &fakeSource{title: domain.ReferenceTitle{Title: "Der Beispiel Film", Year: 2020, Kind: domain.KindMovie}}
	orch := newTestOrchestrator(t, []adapter.Adapter{ad}, src)

	req := domain.StreamRequest{ExternalID: "tt1234567", Kind: domain.KindMovie}
	streams := orch.ResolveStreams(context.Background(), req)

	require.Len(t, streams, 1)
	assert.Contains(t, streams[0].DisplayName, "Der Beispiel Film (2020)")
	assert.Contains(t, streams[0].URL, "http://localhost/play/")
}

func TestResolveStreamsNoReferenceTitleReturnsEmpty(t *testing.T) {
	ad := &fakeAdapter{name: "hdfilme", results: []domain.RawSearchResult{oneResult()}}
	src := &fakeSource{err: errors.New("not found")}
	orch := newTestOrchestrator(t, []adapter.Adapter{ad}, src)

	streams := orch.ResolveStreams(context.Background(), domain.StreamRequest{ExternalID: "tt0000000", Kind: domain.KindMovie})
	assert.Empty(t, streams)
}

func TestSearchRawReturnsRawResultsWithoutMetadataResolution(t *testing.T) {
	ad := &fakeAdapter{name: "hdfilme", results: []domain.RawSearchResult{oneResult()}}
	orch := newTestOrchestrator(t, []adapter.Adapter{ad}, &fakeSource{})

	results, err := orch.SearchRaw(context.Background(), "Beispiel Film", domain.CategoryMovies, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Der Beispiel Film", results[0].Title)
}

func TestSearchRawReturnsErrorWhenBudgetCannotBeGranted(t *testing.T) {
	ad := &fakeAdapter{name: "hdfilme", results: []domain.RawSearchResult{oneResult()}}
	orch := newTestOrchestrator(t, []adapter.Adapter{ad}, &fakeSource{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := orch.SearchRaw(ctx, "x", domain.CategoryMovies, nil, nil)
	assert.Error(t, err)
}

func TestFinalizeRunsWithinConfiguredConcurrency(t *testing.T) {
	ad := &fakeAdapter{name: "hdfilme"}
	orch := newTestOrchestrator(t, []adapter.Adapter{ad}, &fakeSource{})
	orch.cfg.ValidationMaxConcurrent = 2

	streams := make([]domain.RankedStream, 0, 5)
	for i := 0; i < 5; i++ {
		streams = append(streams, domain.RankedStream{
			URL:              "https://streamcloud.example/embed/x" + string(rune('a'+i)),
			HosterNormalized: "streamcloud",
			Title:            "x",
		})
	}

	ref := domain.ReferenceTitle{Title: "X", Kind: domain.KindMovie}
	result := orch.finalize(context.Background(), ref, domain.StreamRequest{Kind: domain.KindMovie}, streams)
	assert.Len(t, result, 5)
}
