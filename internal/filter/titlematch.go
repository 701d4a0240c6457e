package filter

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/scavengarr/scavengarr/internal/config"
	"github.com/scavengarr/scavengarr/internal/domain"
)

// trailingSequelNumber catches an exact-title-plus-trailing-number or
// roman-numeral form, e.g. "Iron Man 2" or "Rocky IV".
var trailingSequelNumber = regexp.MustCompile(`(?i)\s+(\d{1,2}|i{1,3}|iv|v|vi{1,3}|ix|x)$`)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// TitleMatch scores one candidate against a reference title and
// reports whether it clears the configured threshold. Cross-site title
// matching is inherently uncertain; this stage bounds that uncertainty
// numerically.
func TitleMatch(ref domain.ReferenceTitle, candidate domain.RawSearchResult, cfg config.TitleMatchConfig) (score float64, pass bool) {
	score = tokenOverlap(ref.Title, candidate.Title)

	tolerance := cfg.YearToleranceMovie
	if ref.Kind == domain.KindSeries {
		tolerance = cfg.YearToleranceSeries
	}

	if year := extractYear(candidate.Title, candidate.ReleaseName); year > 0 && ref.HasYear() {
		diff := year - ref.Year
		if diff < 0 {
			diff = -diff
		}
		if diff <= tolerance {
			score += cfg.YearBonus
		} else {
			score -= cfg.YearPenalty
		}
	}

	if isUnrelatedSequel(ref.Title, candidate.Title) {
		score -= cfg.SequelPenalty
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, score >= cfg.Threshold
}

// Filter applies TitleMatch across a candidate slice, keeping only
// passing results.
func Filter(ref domain.ReferenceTitle, results []domain.RawSearchResult, cfg config.TitleMatchConfig) []domain.RawSearchResult {
	kept := make([]domain.RawSearchResult, 0, len(results))
	for _, result := range results {
		if _, pass := TitleMatch(ref, result, cfg); pass {
			kept = append(kept, result)
		}
	}
	return kept
}

// tokenOverlap is a token-set overlap coefficient: |A∩B| / min(|A|,|B|).
// Chosen over full Jaccard because title lengths vary a lot between a
// reference title and a release-name-heavy candidate title, and overlap
// coefficient tolerates the candidate carrying extra tokens (quality
// tags, year, group name) without being penalized for them.
func tokenOverlap(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	smaller, larger := tokensA, tokensB
	if len(tokensB) < len(tokensA) {
		smaller, larger = tokensB, tokensA
	}

	intersection := 0
	for token := range smaller {
		if _, ok := larger[token]; ok {
			intersection++
		}
	}
	return float64(intersection) / float64(len(smaller))
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if len(field) < 2 {
			continue
		}
		set[field] = struct{}{}
	}
	return set
}

func extractYear(fields ...string) int {
	for _, field := range fields {
		if m := yearPattern.FindString(field); m != "" {
			year := 0
			for _, r := range m {
				year = year*10 + int(r-'0')
			}
			return year
		}
	}
	return 0
}

// isUnrelatedSequel reports whether candidate looks like a different
// numbered installment of ref: the candidate's title equals ref's title
// with a trailing number/roman numeral ref itself doesn't carry.
func isUnrelatedSequel(refTitle, candidateTitle string) bool {
	if trailingSequelNumber.MatchString(refTitle) {
		return false
	}
	m := trailingSequelNumber.FindStringIndex(candidateTitle)
	if m == nil {
		return false
	}
	base := strings.TrimSpace(candidateTitle[:m[0]])
	return strings.EqualFold(base, strings.TrimSpace(refTitle))
}
