package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildStripsDiacritics(t *testing.T) {
	queries := Build("Amélie")
	assert.Equal(t, []string{"Amelie"}, queries)
}

func TestBuildTransliteratesSpecialLetters(t *testing.T) {
	queries := Build("Großstadtträume")
	assert.Equal(t, []string{"Grossstadttraume"}, queries)
}

func TestBuildProducesColonFallback(t *testing.T) {
	queries := Build("Mission: Impossible")
	assert.Equal(t, []string{"Mission Impossible", "Mission"}, queries)
}

func TestBuildDeduplicatesWhenPrefixEqualsCleaned(t *testing.T) {
	queries := Build("Colon:")
	assert.Equal(t, []string{"Colon"}, queries)
}

func TestBuildPreservesHyphensAndApostrophes(t *testing.T) {
	queries := Build("Ocean's Eleven - Director's Cut")
	assert.Equal(t, []string{"Ocean's Eleven - Director's Cut"}, queries)
}

func TestBuildCollapsesWhitespace(t *testing.T) {
	queries := Build("Der   Herr  der   Ringe")
	assert.Equal(t, []string{"Der Herr der Ringe"}, queries)
}

func TestBuildWithoutColonReturnsSingleQuery(t *testing.T) {
	queries := Build("Das Boot")
	assert.Len(t, queries, 1)
	assert.Equal(t, "Das Boot", queries[0])
}
