package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scavengarr/scavengarr/internal/domain"
)

func TestDetectQualityExplicitWins(t *testing.T) {
	assert.Equal(t, domain.QualityUHD4K, DetectQuality("2160p", "anything", ""))
}

func TestDetectQualityFallsBackToTitle(t *testing.T) {
	assert.Equal(t, domain.QualityHD1080p, DetectQuality("", "Das Boot 1080p German", ""))
}

func TestDetectQualityUnknownWhenNoSignal(t *testing.T) {
	assert.Equal(t, domain.QualityUnknown, DetectQuality("", "Das Boot", ""))
}

func TestNormalizeHosterStripsSuffixAndAlias(t *testing.T) {
	assert.Equal(t, "rapidgator", NormalizeHoster("RapidGator.net"))
	assert.Equal(t, "rapidgator", NormalizeHoster("RG.com"))
	assert.Equal(t, "somehoster", NormalizeHoster("SomeHoster.sx"))
}

func TestParseSizeBytes(t *testing.T) {
	bytes, ok := ParseSizeBytes("1.5 GB")
	assert.True(t, ok)
	assert.Equal(t, int64(1.5*(1<<30)), bytes)

	_, ok = ParseSizeBytes("unknown")
	assert.False(t, ok)
}

func TestNormalizeProducesRankedStream(t *testing.T) {
	result := domain.RawSearchResult{Title: "Das Boot 1080p", ReleaseName: "Das.Boot.1080p.German"}
	link := domain.HosterLink{HosterName: "RapidGator.net", URL: "https://example.com/f", Size: "2 GB"}

	rs := Normalize(result, link, "hdfilme", "de")
	assert.Equal(t, "rapidgator", rs.HosterNormalized)
	assert.Equal(t, domain.QualityHD1080p, rs.Quality)
	assert.Equal(t, "de", rs.Language.Code)
	assert.Equal(t, "hdfilme", rs.SourceAdapter)
	assert.Greater(t, rs.SizeBytes, int64(0))
}

func TestLanguageForParsesCompoundDubCodes(t *testing.T) {
	lang := languageFor("ger-dub")
	assert.Equal(t, "de", lang.Code)
	assert.Equal(t, "German Dub", lang.Label)
	assert.True(t, lang.IsDubbed)

	sub := languageFor("ger-sub")
	assert.Equal(t, "German Sub", sub.Label)
	assert.False(t, sub.IsDubbed)
}

func TestLanguageForUnknownValuePassesThrough(t *testing.T) {
	lang := languageFor("jpn-sub")
	assert.Equal(t, "jpn-sub", lang.Code)
	assert.Equal(t, "jpn-sub", lang.Label)
	assert.False(t, lang.IsDubbed)
}

func TestNormalizeMarksDubbedReleaseName(t *testing.T) {
	result := domain.RawSearchResult{Title: "Der Film", ReleaseName: "Der.Film.German.DUBBED.1080p.WEB"}
	link := domain.HosterLink{HosterName: "voe", URL: "https://voe.sx/e/x"}

	rs := Normalize(result, link, "hdfilme", "de")
	assert.True(t, rs.Language.IsDubbed)
	assert.Equal(t, "de", rs.Language.Code)
}
