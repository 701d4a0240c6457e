package stream

import "strings"

// knownSuffixes are stripped from a raw hoster host/name before alias
// lookup.
var knownSuffixes = []string{".com", ".net", ".sx", ".to", ".cc", ".io", ".me"}

// hosterAliases maps known alternate spellings/domains to one canonical
// normalized name, so the same physical hoster scraped from different
// sites (or under a rotated domain) dedupes correctly.
var hosterAliases = map[string]string{
	"rapidgator":  "rapidgator",
	"rg":          "rapidgator",
	"ddownload":   "ddownload",
	"ddl":         "ddownload",
	"katfile":     "katfile",
	"1fichier":    "1fichier",
	"turbobit":    "turbobit",
	"nitroflare":  "nitroflare",
	"uploaded":    "uploaded",
	"filefactory": "filefactory",
	"mega":        "mega",
	"megaup":      "mega",
}

// NormalizeHoster lowercases name, strips a known trailing domain
// suffix, and resolves known aliases to one canonical spelling.
func NormalizeHoster(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range knownSuffixes {
		normalized = strings.TrimSuffix(normalized, suffix)
	}
	normalized = strings.TrimSpace(normalized)
	if canonical, ok := hosterAliases[normalized]; ok {
		return canonical
	}
	return normalized
}
