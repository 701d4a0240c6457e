// Package torznab renders search results as a Torznab-style RSS/XML
// feed, the indexer protocol *arr clients (Sonarr/Radarr/Prowlarr)
// speak: RSS 2.0 with the torznab attribute namespace.
package torznab

import "encoding/xml"

// Feed is the root RSS element returned by a search request.
type Feed struct {
	XMLName      xml.Name `xml:"rss"`
	Version      string   `xml:"version,attr"`
	XmlnsAtom    string   `xml:"xmlns:atom,attr"`
	XmlnsTorznab string   `xml:"xmlns:torznab,attr"`
	Channel      Channel  `xml:"channel"`
}

// Channel holds the feed's metadata and result items.
type Channel struct {
	Title       string `xml:"title"`
	Description string `xml:"description,omitempty"`
	Link        string `xml:"link,omitempty"`
	Language    string `xml:"language,omitempty"`
	Items       []Item `xml:"item"`
}

// Item is one search result row, mapped from a domain.RawSearchResult
// plus the HosterLink chosen as its download link.
type Item struct {
	Title       string        `xml:"title"`
	GUID        GUID          `xml:"guid"`
	Link        string        `xml:"link"`
	Comments    string        `xml:"comments,omitempty"`
	PubDate     string        `xml:"pubDate,omitempty"`
	Size        int64         `xml:"size,omitempty"`
	Description string        `xml:"description,omitempty"`
	Category    int           `xml:"category"`
	Enclosure   Enclosure     `xml:"enclosure"`
	Attrs       []TorznabAttr `xml:"torznab:attr"`
}

// GUID is the item's stable identifier; IsPermaLink is always false
// since these GUIDs are opaque, not browsable URLs.
type GUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// Enclosure carries the actual download/embed URL and its declared size.
type Enclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// TorznabAttr is one <torznab:attr name="..." value="..."/> extension
// element; the category, size, and language attrs Sonarr/Radarr parse
// out of the generic <item> fields.
type TorznabAttr struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}
