// Package query turns a reference title into one or more plain-text
// strings site adapters search with: NFKD fold, transliteration of the
// letters NFKD leaves behind, and a before-the-colon fallback query
// for subtitled releases.
package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// transliterations covers characters NFKD decomposition doesn't reduce
// to a combining-mark pair: true letter substitutions rather than
// accented variants.
var transliterations = map[rune]string{
	'ß': "ss",
	'Æ': "AE",
	'æ': "ae",
	'Œ': "OE",
	'œ': "oe",
	'Ø': "O",
	'ø': "o",
	'Ł': "L",
	'ł': "l",
	'Đ': "D",
	'đ': "d",
}

var stripCombining = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Build produces the search strings for title. It always returns
// at least one string; a colon in the original additionally yields the
// pre-colon substring as a second, deduplicated fallback query.
func Build(title string) []string {
	cleaned := clean(title)
	queries := []string{cleaned}

	if idx := strings.IndexRune(title, ':'); idx >= 0 {
		prefix := clean(title[:idx])
		if prefix != "" && prefix != cleaned {
			queries = append(queries, prefix)
		}
	}
	return queries
}

func clean(s string) string {
	transliterated := transliterate(s)
	folded, _, err := transform.String(stripCombining, transliterated)
	if err != nil {
		folded = transliterated
	}
	stripped := stripColons(folded)
	return collapseWhitespace(stripped)
}

func transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := transliterations[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stripColons(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ':' {
			return -1
		}
		return r
	}, s)
}

func collapseWhitespace(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
