package stream

import (
	"sort"

	"github.com/scavengarr/scavengarr/internal/config"
	"github.com/scavengarr/scavengarr/internal/domain"
)

// Score computes the deterministic score formula:
// language_score + quality_ordinal*quality_multiplier + hoster_score +
// size_bonus_if_in_band.
func Score(rs domain.RankedStream, scoring config.ScoringConfig) int {
	score := LanguageScore(rs.Language, scoring)
	score += int(rs.Quality) * scoring.QualityMultiplier
	score += scoring.HosterScores[rs.HosterNormalized]
	if inSizeBonusBand(rs.SizeBytes, scoring) {
		score += scoring.SizeBonus
	}
	return score
}

// inSizeBonusBand reports whether the stream's size bytes fall within
// the configured [min,max] band. The band is disabled (never awarded)
// when max is zero, the conservative default: an unconfigured band
// must never silently reward arbitrary file sizes.
func inSizeBonusBand(sizeBytes int64, scoring config.ScoringConfig) bool {
	if scoring.SizeBonusMaxBytes <= 0 {
		return false
	}
	return sizeBytes >= scoring.SizeBonusMinBytes && sizeBytes <= scoring.SizeBonusMaxBytes
}

// ScoreAndDedupe scores every stream, sorts descending (ties broken by
// hoster name then URL so the order is deterministic), then
// deduplicates to at most one stream per normalized hoster; the
// best-scored survives. Streams with an empty hoster name are never
// deduplicated against each other, since they represent unique,
// unidentified mirrors.
func ScoreAndDedupe(streams []domain.RankedStream, scoring config.ScoringConfig) []domain.RankedStream {
	scored := make([]domain.RankedStream, len(streams))
	copy(scored, streams)
	for i := range scored {
		scored[i].Score = Score(scored[i], scoring)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].HosterNormalized != scored[j].HosterNormalized {
			return scored[i].HosterNormalized < scored[j].HosterNormalized
		}
		return scored[i].URL < scored[j].URL
	})

	seen := make(map[string]bool, len(scored))
	deduped := make([]domain.RankedStream, 0, len(scored))
	for _, rs := range scored {
		if rs.HosterNormalized == "" {
			deduped = append(deduped, rs)
			continue
		}
		if seen[rs.HosterNormalized] {
			continue
		}
		seen[rs.HosterNormalized] = true
		deduped = append(deduped, rs)
	}
	return deduped
}
