package torznab

import "encoding/xml"

// Capabilities is the response for ?t=caps, advertising the category
// taxonomy and search modes a Torznab client can rely on.
type Capabilities struct {
	XMLName    xml.Name       `xml:"caps"`
	Server     CapsServer     `xml:"server"`
	Searching  CapsSearching  `xml:"searching"`
	Categories CapsCategories `xml:"categories"`
}

type CapsServer struct {
	Title string `xml:"title,attr"`
}

type CapsSearching struct {
	Search      CapsSearchMode `xml:"search"`
	TVSearch    CapsSearchMode `xml:"tv-search"`
	MovieSearch CapsSearchMode `xml:"movie-search"`
}

type CapsSearchMode struct {
	Available       string `xml:"available,attr"`
	SupportedParams string `xml:"supportedParams,attr"`
}

type CapsCategories struct {
	Category []CapsCategory `xml:"category"`
}

type CapsCategory struct {
	ID     int            `xml:"id,attr"`
	Name   string         `xml:"name,attr"`
	Subcat []CapsCategory `xml:"subcat,omitempty"`
}

// DefaultCapabilities describes this indexer's fixed category taxonomy
// (domain.TorznabCategory), advertised once at startup.
func DefaultCapabilities(serverTitle string) Capabilities {
	return Capabilities{
		Server: CapsServer{Title: serverTitle},
		Searching: CapsSearching{
			Search:      CapsSearchMode{Available: "yes", SupportedParams: "q"},
			TVSearch:    CapsSearchMode{Available: "yes", SupportedParams: "q,season,ep"},
			MovieSearch: CapsSearchMode{Available: "yes", SupportedParams: "q"},
		},
		Categories: CapsCategories{
			Category: []CapsCategory{
				{ID: 2000, Name: "Movies"},
				{ID: 5000, Name: "TV", Subcat: []CapsCategory{
					{ID: 5070, Name: "TV/Anime"},
					{ID: 5080, Name: "TV/Documentary"},
				}},
			},
		},
	}
}
