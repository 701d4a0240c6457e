package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scavengarr/scavengarr/internal/config"
	"github.com/scavengarr/scavengarr/internal/domain"
)

func testCfg() config.TitleMatchConfig {
	return config.TitleMatchConfig{
		Threshold:           0.6,
		YearBonus:           0.1,
		YearPenalty:         0.3,
		SequelPenalty:       0.5,
		YearToleranceMovie:  1,
		YearToleranceSeries: 0,
	}
}

func TestTitleMatchExactTitlePasses(t *testing.T) {
	ref := domain.ReferenceTitle{Title: "Das Boot", Year: 1981, Kind: domain.KindMovie}
	candidate := domain.RawSearchResult{Title: "Das Boot 1981 German 1080p", ReleaseName: "Das.Boot.1981.German.1080p"}

	score, pass := TitleMatch(ref, candidate, testCfg())
	assert.True(t, pass)
	assert.Greater(t, score, 0.6)
}

func TestTitleMatchUnrelatedTitleFails(t *testing.T) {
	ref := domain.ReferenceTitle{Title: "Das Boot", Year: 1981, Kind: domain.KindMovie}
	candidate := domain.RawSearchResult{Title: "Titanic 1997 German 1080p"}

	_, pass := TitleMatch(ref, candidate, testCfg())
	assert.False(t, pass)
}

func TestTitleMatchYearOutsideToleranceIsPenalized(t *testing.T) {
	ref := domain.ReferenceTitle{Title: "Das Boot", Year: 1981, Kind: domain.KindMovie}
	withYear := domain.RawSearchResult{Title: "Das Boot 1981"}
	wrongYear := domain.RawSearchResult{Title: "Das Boot 1999"}

	scoreGood, _ := TitleMatch(ref, withYear, testCfg())
	scoreBad, _ := TitleMatch(ref, wrongYear, testCfg())
	assert.Greater(t, scoreGood, scoreBad)
}

func TestTitleMatchSequelPenaltyDropsUnrelatedInstallment(t *testing.T) {
	ref := domain.ReferenceTitle{Title: "Iron Man", Year: 2008, Kind: domain.KindMovie}
	sequel := domain.RawSearchResult{Title: "Iron Man 2"}

	score, pass := TitleMatch(ref, sequel, testCfg())
	assert.False(t, pass)
	assert.Less(t, score, 0.6)
}

func TestTitleMatchSameNumberedReferenceIsNotPenalized(t *testing.T) {
	ref := domain.ReferenceTitle{Title: "Iron Man 2", Year: 2010, Kind: domain.KindMovie}
	candidate := domain.RawSearchResult{Title: "Iron Man 2 2010 German"}

	_, pass := TitleMatch(ref, candidate, testCfg())
	assert.True(t, pass)
}

func TestFilterKeepsOnlyPassingResults(t *testing.T) {
	ref := domain.ReferenceTitle{Title: "Das Boot", Year: 1981, Kind: domain.KindMovie}
	results := []domain.RawSearchResult{
		{Title: "Das Boot 1981 German"},
		{Title: "Completely Unrelated Movie"},
	}
	out := Filter(ref, results, testCfg())
	assert.Len(t, out, 1)
	assert.Equal(t, "Das Boot 1981 German", out[0].Title)
}

// The shipped defaults themselves must reject both a neighbouring
// installment and an unrelated title for the reference "Iron Man"
// (2008) — not just the tuned-up values the tests above use.
func TestFilterWithDefaultConfigDropsSequelAndUnrelated(t *testing.T) {
	ref := domain.ReferenceTitle{Title: "Iron Man", Year: 2008, Kind: domain.KindMovie}
	results := []domain.RawSearchResult{
		{Title: "Iron Man 2"},
		{Title: "Iron Man 2", ReleaseName: "Iron.Man.2.2010.German.1080p"},
		{Title: "Avengers Endgame"},
	}
	out := Filter(ref, results, config.Default().TitleMatch)
	assert.Empty(t, out)
}

func TestTitleMatchWithDefaultConfigKeepsExactMatch(t *testing.T) {
	ref := domain.ReferenceTitle{Title: "Iron Man", Year: 2008, Kind: domain.KindMovie}
	candidate := domain.RawSearchResult{Title: "Iron Man 2008 German 1080p"}

	_, pass := TitleMatch(ref, candidate, config.Default().TitleMatch)
	assert.True(t, pass)
}
