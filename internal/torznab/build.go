package torznab

import (
	"strconv"

	"github.com/scavengarr/scavengarr/internal/domain"
	"github.com/scavengarr/scavengarr/internal/stream"
)

// BuildFeed renders a set of search results as a Torznab RSS feed, one
// item per (result, link) pair so each hoster link is independently
// gradable/downloadable by the *arr client, matching how these clients
// expect one <item> per concrete release asset rather than one per
// RawSearchResult.
func BuildFeed(serverTitle string, results []domain.RawSearchResult) Feed {
	channel := Channel{
		Title:       serverTitle,
		Description: "Scavengarr search results",
	}
	for _, r := range results {
		if !r.Valid() {
			continue
		}
		channel.Items = append(channel.Items, itemsForResult(r)...)
	}
	return Feed{
		Version:      "2.0",
		XmlnsAtom:    "http://www.w3.org/2005/Atom",
		XmlnsTorznab: "http://torznab.com/schemas/2015/feed",
		Channel:      channel,
	}
}

func itemsForResult(r domain.RawSearchResult) []Item {
	items := make([]Item, 0, len(r.Links))
	for _, link := range r.Links {
		sizeBytes, _ := stream.ParseSizeBytes(firstNonEmpty(link.Size, r.Size))
		title := r.ReleaseName
		if title == "" {
			title = r.Title
		}
		item := Item{
			Title:       title,
			GUID:        GUID{Value: link.URL, IsPermaLink: false},
			Link:        link.URL,
			Size:        sizeBytes,
			Description: r.Title,
			Category:    int(r.Category),
			Enclosure: Enclosure{
				URL:    link.URL,
				Length: sizeBytes,
				Type:   "application/x-bittorrent",
			},
			Attrs: attrsFor(r, link, sizeBytes),
		}
		items = append(items, item)
	}
	return items
}

func attrsFor(r domain.RawSearchResult, link domain.HosterLink, sizeBytes int64) []TorznabAttr {
	attrs := []TorznabAttr{
		{Name: "category", Value: strconv.Itoa(int(r.Category))},
	}
	if sizeBytes > 0 {
		attrs = append(attrs, TorznabAttr{Name: "size", Value: strconv.FormatInt(sizeBytes, 10)})
	}
	if link.Language != "" {
		attrs = append(attrs, TorznabAttr{Name: "language", Value: link.Language})
	}
	if link.HosterName != "" {
		attrs = append(attrs, TorznabAttr{Name: "hoster", Value: link.HosterName})
	}
	return attrs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
