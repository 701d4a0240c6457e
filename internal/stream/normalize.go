package stream

import (
	"regexp"
	"strings"

	"github.com/scavengarr/scavengarr/internal/config"
	"github.com/scavengarr/scavengarr/internal/domain"
)

// Normalize produces one RankedStream per (result, link) pair.
// defaultLanguage is the adapter's declared locale, used when the link
// itself carries no language label.
func Normalize(result domain.RawSearchResult, link domain.HosterLink, sourceAdapter, defaultLanguage string) domain.RankedStream {
	quality := DetectQuality(link.Quality, result.Title, result.ReleaseName)

	langCode := link.Language
	if langCode == "" {
		langCode = defaultLanguage
	}
	lang := languageFor(langCode)
	if !lang.IsDubbed && isDubbedRelease(result.Title, result.ReleaseName, link.Label) {
		lang.IsDubbed = true
	}

	sizeRaw := link.Size
	if sizeRaw == "" {
		sizeRaw = result.Size
	}
	sizeBytes, _ := ParseSizeBytes(sizeRaw)

	return domain.RankedStream{
		URL:              link.URL,
		HosterNormalized: NormalizeHoster(link.HosterName),
		Quality:          quality,
		Language:         lang,
		Size:             sizeRaw,
		SizeBytes:        sizeBytes,
		Title:            result.Title,
		ReleaseName:      result.ReleaseName,
		SourceAdapter:    sourceAdapter,
	}
}

// NormalizeAll normalizes every link on result, one RankedStream each.
func NormalizeAll(result domain.RawSearchResult, sourceAdapter, defaultLanguage string) []domain.RankedStream {
	streams := make([]domain.RankedStream, 0, len(result.Links))
	for _, link := range result.Links {
		streams = append(streams, Normalize(result, link, sourceAdapter, defaultLanguage))
	}
	return streams
}

var languageLabels = map[string]string{
	"de": "German",
	"en": "English",
	"fr": "French",
	"es": "Spanish",
}

// languageCodeAliases folds the three-letter codes some sites label
// links with onto the two-letter codes the language_scores table is
// keyed by.
var languageCodeAliases = map[string]string{
	"ger": "de",
	"eng": "en",
	"fre": "fr",
	"spa": "es",
}

// dubbedReleasePattern matches the DUBBED tag German scene release
// names carry for dubbed audio tracks.
var dubbedReleasePattern = regexp.MustCompile(`(?i)\bdubbed\b`)

// languageFor parses a link's language value: a plain code ("de",
// "en") or a compound "ger-dub"/"ger-sub" form, where the suffix marks
// a dubbed or subtitled audio track. Unknown values pass through
// unchanged as both code and label.
func languageFor(code string) domain.Language {
	base, variant := code, ""
	if i := strings.IndexByte(code, '-'); i >= 0 {
		base, variant = code[:i], code[i+1:]
	}
	if alias, ok := languageCodeAliases[strings.ToLower(base)]; ok {
		base = alias
	}
	label, ok := languageLabels[base]
	if !ok {
		return domain.Language{Code: code, Label: code}
	}
	lang := domain.Language{Code: base, Label: label}
	switch strings.ToLower(variant) {
	case "dub":
		lang.IsDubbed = true
		lang.Label += " Dub"
	case "sub":
		lang.Label += " Sub"
	}
	return lang
}

// isDubbedRelease reports whether any of the release-level fields carry
// a DUBBED marker.
func isDubbedRelease(fields ...string) bool {
	for _, field := range fields {
		if dubbedReleasePattern.MatchString(field) {
			return true
		}
	}
	return false
}

// LanguageScore looks up a language's configured score, falling back to
// the config's default when the language has no explicit entry.
func LanguageScore(lang domain.Language, scoring config.ScoringConfig) int {
	if score, ok := scoring.LanguageScores[lang.Code]; ok {
		return score
	}
	return scoring.DefaultLanguageScore
}
