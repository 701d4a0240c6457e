// Package filter narrows a raw candidate list down to what actually
// matches the requested content — by season/episode and by title
// similarity — before normalization ever sees a result.
package filter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/scavengarr/scavengarr/internal/domain"
)

// seasonEpisodePattern matches SxxExx (S01E05) anywhere in a string,
// case-insensitively.
var seasonEpisodePattern = regexp.MustCompile(`(?i)s(\d{1,2})e(\d{1,3})`)

// wordedPattern matches "season 1 episode 5" style phrasing.
var wordedPattern = regexp.MustCompile(`(?i)season\s*(\d{1,2}).{0,10}?episode\s*(\d{1,3})`)

// shorthandPattern matches "1x5" style labels, as German hoster sites
// often use for per-episode link labels.
var shorthandPattern = regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{1,3})\b`)

// Episode narrows results down to the requested (season, episode) when
// the request carries one. Movie requests and series requests without
// a season/episode pass through unchanged.
func Episode(req domain.StreamRequest, results []domain.RawSearchResult) []domain.RawSearchResult {
	if !req.HasEpisode() {
		return results
	}
	season, episode := req.SeasonEpisode()

	kept := make([]domain.RawSearchResult, 0, len(results))
	for _, result := range results {
		if s, e, ok := extractSeasonEpisode(result.Title, result.ReleaseName); ok {
			if s == season && e == episode {
				kept = append(kept, result)
			}
			continue
		}

		if len(result.Links) > 0 {
			if narrowed, any := narrowLinksByEpisode(result.Links, season, episode); any {
				if len(narrowed) == 0 {
					continue
				}
				result.Links = narrowed
				kept = append(kept, result)
				continue
			}
		}

		// No episode info found at any level: keep, per the
		// benefit-of-the-doubt rule.
		kept = append(kept, result)
	}
	return kept
}

func extractSeasonEpisode(fields ...string) (season, episode int, ok bool) {
	for _, field := range fields {
		if m := seasonEpisodePattern.FindStringSubmatch(field); m != nil {
			return atoiMust(m[1]), atoiMust(m[2]), true
		}
		if m := wordedPattern.FindStringSubmatch(field); m != nil {
			return atoiMust(m[1]), atoiMust(m[2]), true
		}
	}
	return 0, 0, false
}

// narrowLinksByEpisode returns the subset of links whose label carries
// episode info matching (season, episode), and whether any link carried
// episode info at all (the "any" return distinguishes "no labels had
// episode markers" from "labels had markers but none matched").
func narrowLinksByEpisode(links []domain.HosterLink, season, episode int) (narrowed []domain.HosterLink, any bool) {
	for _, link := range links {
		s, e, ok := labelSeasonEpisode(link.Label)
		if !ok {
			continue
		}
		any = true
		if s == season && e == episode {
			narrowed = append(narrowed, link)
		}
	}
	return narrowed, any
}

func labelSeasonEpisode(label string) (season, episode int, ok bool) {
	if m := seasonEpisodePattern.FindStringSubmatch(label); m != nil {
		return atoiMust(m[1]), atoiMust(m[2]), true
	}
	if m := shorthandPattern.FindStringSubmatch(label); m != nil {
		return atoiMust(m[1]), atoiMust(m[2]), true
	}
	return 0, 0, false
}

func atoiMust(s string) int {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
