package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scavengarr/scavengarr/internal/domain"
)

func intPtr(i int) *int { return &i }

func TestEpisodePassesThroughWhenNotRequested(t *testing.T) {
	results := []domain.RawSearchResult{{Title: "Breaking Bad"}}
	out := Episode(domain.StreamRequest{Kind: domain.KindSeries}, results)
	assert.Equal(t, results, out)
}

func TestEpisodeMatchesAtResultLevel(t *testing.T) {
	req := domain.StreamRequest{Kind: domain.KindSeries, Season: intPtr(1), Episode: intPtr(5)}
	results := []domain.RawSearchResult{
		{Title: "Breaking Bad S01E05"},
		{Title: "Breaking Bad S01E06"},
	}
	out := Episode(req, results)
	assert.Len(t, out, 1)
	assert.Equal(t, "Breaking Bad S01E05", out[0].Title)
}

func TestEpisodeNarrowsLinksWhenResultIsSeriesWide(t *testing.T) {
	req := domain.StreamRequest{Kind: domain.KindSeries, Season: intPtr(1), Episode: intPtr(5)}
	results := []domain.RawSearchResult{
		{
			Title: "Breaking Bad Staffel 1",
			Links: []domain.HosterLink{
				{URL: "a", Label: "S01E04"},
				{URL: "b", Label: "S01E05"},
				{URL: "c", Label: "1x6"},
			},
		},
	}
	out := Episode(req, results)
	assert.Len(t, out, 1)
	assert.Len(t, out[0].Links, 1)
	assert.Equal(t, "b", out[0].Links[0].URL)
}

func TestEpisodeDropsResultWhenNoLinkMatches(t *testing.T) {
	req := domain.StreamRequest{Kind: domain.KindSeries, Season: intPtr(1), Episode: intPtr(99)}
	results := []domain.RawSearchResult{
		{
			Title: "Breaking Bad Staffel 1",
			Links: []domain.HosterLink{{URL: "a", Label: "S01E04"}},
		},
	}
	out := Episode(req, results)
	assert.Empty(t, out)
}

func TestEpisodeKeepsResultWithNoEpisodeInfoAtAll(t *testing.T) {
	req := domain.StreamRequest{Kind: domain.KindSeries, Season: intPtr(1), Episode: intPtr(5)}
	results := []domain.RawSearchResult{
		{Title: "Breaking Bad Complete Series", Links: []domain.HosterLink{{URL: "a", Label: "HD"}}},
	}
	out := Episode(req, results)
	assert.Len(t, out, 1)
}

func TestEpisodeZeroIsAValidValue(t *testing.T) {
	req := domain.StreamRequest{Kind: domain.KindSeries, Season: intPtr(0), Episode: intPtr(0)}
	results := []domain.RawSearchResult{
		{Title: "Special S00E00"},
		{Title: "Regular S01E01"},
	}
	out := Episode(req, results)
	assert.Len(t, out, 1)
	assert.Equal(t, "Special S00E00", out[0].Title)
}
