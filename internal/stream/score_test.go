package stream

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scavengarr/scavengarr/internal/config"
	"github.com/scavengarr/scavengarr/internal/domain"
)

func testScoring() config.ScoringConfig {
	return config.ScoringConfig{
		LanguageScores:       map[string]int{"de": 100, "en": 20},
		DefaultLanguageScore: 0,
		QualityMultiplier:    10,
		HosterScores:         map[string]int{"rapidgator": 5},
	}
}

func TestScoreFormula(t *testing.T) {
	rs := domain.RankedStream{
		HosterNormalized: "rapidgator",
		Quality:          domain.QualityHD1080p,
		Language:         domain.Language{Code: "de"},
	}
	score := Score(rs, testScoring())
	assert.Equal(t, 100+int(domain.QualityHD1080p)*10+5, score)
}

func TestScoreAndDedupeKeepsBestPerHoster(t *testing.T) {
	streams := []domain.RankedStream{
		{HosterNormalized: "rapidgator", URL: "a", Quality: domain.QualityHD720p, Language: domain.Language{Code: "en"}},
		{HosterNormalized: "rapidgator", URL: "b", Quality: domain.QualityHD1080p, Language: domain.Language{Code: "de"}},
		{HosterNormalized: "ddownload", URL: "c", Quality: domain.QualitySD, Language: domain.Language{Code: "en"}},
	}
	out := ScoreAndDedupe(streams, testScoring())

	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].URL) // best rapidgator stream wins, sorted first
	assert.Equal(t, "rapidgator", out[0].HosterNormalized)
}

func TestScoreAndDedupeKeepsAllEmptyHosterStreams(t *testing.T) {
	streams := []domain.RankedStream{
		{HosterNormalized: "", URL: "x", Language: domain.Language{Code: "de"}},
		{HosterNormalized: "", URL: "y", Language: domain.Language{Code: "de"}},
	}
	out := ScoreAndDedupe(streams, testScoring())
	assert.Len(t, out, 2)
}

func TestScoreAndDedupeSortsDescendingWithDeterministicTiebreak(t *testing.T) {
	streams := []domain.RankedStream{
		{HosterNormalized: "b-hoster", URL: "z", Language: domain.Language{Code: "en"}},
		{HosterNormalized: "a-hoster", URL: "y", Language: domain.Language{Code: "en"}},
	}
	out := ScoreAndDedupe(streams, testScoring())
	require.Len(t, out, 2)
	assert.Equal(t, "a-hoster", out[0].HosterNormalized)
}

func TestSizeBonusDisabledByDefault(t *testing.T) {
	scoring := testScoring()
	rs := domain.RankedStream{SizeBytes: 5 << 30, Language: domain.Language{Code: "de"}}
	score := Score(rs, scoring)
	assert.Equal(t, 100, score)
}

func TestSizeBonusAppliedWhenConfiguredAndInBand(t *testing.T) {
	scoring := testScoring()
	scoring.SizeBonusMinBytes = 1 << 30
	scoring.SizeBonusMaxBytes = 10 << 30
	scoring.SizeBonus = 3
	rs := domain.RankedStream{SizeBytes: 5 << 30, Language: domain.Language{Code: "de"}}
	score := Score(rs, scoring)
	assert.Equal(t, 103, score)
}

// For fixed inputs and config, the ordered output must be identical
// run over run, regardless of the input slice's original order.
// cmp.Diff is used over assert.Equal so a future regression prints
// exactly which stream and field diverged rather than just "not
// equal".
func TestScoreAndDedupeIsDeterministicAcrossRuns(t *testing.T) {
	streams := []domain.RankedStream{
		{HosterNormalized: "ddownload", URL: "https://ddownload.example/c", Quality: domain.QualitySD, Language: domain.Language{Code: "en"}},
		{HosterNormalized: "rapidgator", URL: "https://rapidgator.example/a", Quality: domain.QualityHD720p, Language: domain.Language{Code: "en"}},
		{HosterNormalized: "rapidgator", URL: "https://rapidgator.example/b", Quality: domain.QualityHD1080p, Language: domain.Language{Code: "de"}},
	}
	scoring := testScoring()

	first := ScoreAndDedupe(streams, scoring)

	reversed := make([]domain.RankedStream, len(streams))
	for i, rs := range streams {
		reversed[len(streams)-1-i] = rs
	}
	second := ScoreAndDedupe(reversed, scoring)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("ScoreAndDedupe not deterministic under input reordering (-first +second):\n%s", diff)
	}
}
