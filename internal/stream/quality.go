package stream

import (
	"regexp"
	"strings"

	"github.com/scavengarr/scavengarr/internal/domain"
)

// qualityPatterns is checked in order, highest resolution first, so a
// "2160p 1080p remux" style name resolves to the better bucket.
var qualityPatterns = []struct {
	pattern *regexp.Regexp
	quality domain.Quality
}{
	{regexp.MustCompile(`(?i)2160p|4k|uhd`), domain.QualityUHD4K},
	{regexp.MustCompile(`(?i)1080p`), domain.QualityHD1080p},
	{regexp.MustCompile(`(?i)720p`), domain.QualityHD720p},
	{regexp.MustCompile(`(?i)480p|sd\b`), domain.QualitySD},
}

// DetectQuality infers a Quality bucket from an explicit field first
// (already-known quality string from an adapter), falling back to
// regex substring detection over title/release name, and finally
// domain.QualityUnknown.
func DetectQuality(explicit string, title, releaseName string) domain.Quality {
	if explicit != "" {
		if q, ok := qualityFromText(explicit); ok {
			return q
		}
	}
	if q, ok := qualityFromText(title); ok {
		return q
	}
	if q, ok := qualityFromText(releaseName); ok {
		return q
	}
	return domain.QualityUnknown
}

func qualityFromText(s string) (domain.Quality, bool) {
	if s == "" {
		return domain.QualityUnknown, false
	}
	for _, candidate := range qualityPatterns {
		if candidate.pattern.MatchString(s) {
			return candidate.quality, true
		}
	}
	return domain.QualityUnknown, false
}

// Is10Bit reports whether the text mentions 10-bit color depth.
func Is10Bit(fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), "10bit") {
			return true
		}
	}
	return false
}
