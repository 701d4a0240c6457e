// Package stremiotypes holds the Stremio wire-protocol JSON types:
// manifest, catalog, meta preview, and stream response shapes.
package stremiotypes

// Manifest describes the addon's capabilities.
// See https://github.com/Stremio/stremio-addon-sdk/blob/master/docs/api/responses/manifest.md
type Manifest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`

	Resources []string      `json:"resources"`
	Types     []string      `json:"types"`
	Catalogs  []CatalogItem `json:"catalogs"`

	IDPrefixes    []string      `json:"idPrefixes,omitempty"`
	Background    string        `json:"background,omitempty"`
	Logo          string        `json:"logo,omitempty"`
	ContactEmail  string        `json:"contactEmail,omitempty"`
	BehaviorHints ManifestHints `json:"behaviorHints,omitempty"`
}

// ManifestHints mirrors the manifest-level behaviorHints object.
type ManifestHints struct {
	Adult                 bool `json:"adult,omitempty"`
	P2P                   bool `json:"p2p,omitempty"`
	Configurable          bool `json:"configurable,omitempty"`
	ConfigurationRequired bool `json:"configurationRequired,omitempty"`
}

// CatalogItem describes one browseable catalog the manifest exposes.
type CatalogItem struct {
	Type  string      `json:"type"`
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Extra []ExtraItem `json:"extra,omitempty"`
}

type ExtraItem struct {
	Name         string   `json:"name"`
	IsRequired   bool     `json:"isRequired,omitempty"`
	Options      []string `json:"options,omitempty"`
	OptionsLimit int      `json:"optionsLimit,omitempty"`
}

// MetaPreviewItem is one row of a catalog response.
type MetaPreviewItem struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Poster      string `json:"poster"`
	PosterShape string `json:"posterShape,omitempty"`
	Description string `json:"description,omitempty"`
	ReleaseInfo string `json:"releaseInfo,omitempty"`
}

// CatalogResponse wraps a catalog request's response envelope.
type CatalogResponse struct {
	Metas []MetaPreviewItem `json:"metas"`
}

// StreamItem is one playable stream offered for a content ID, built
// from domain.ClientStream by internal/httpapi.
// See https://github.com/Stremio/stremio-addon-sdk/blob/master/docs/api/responses/stream.md
type StreamItem struct {
	URL           string         `json:"url,omitempty"`
	ExternalURL   string         `json:"externalUrl,omitempty"`
	Name          string         `json:"name,omitempty"`
	Title         string         `json:"title,omitempty"`
	Description   string         `json:"description,omitempty"`
	BehaviorHints *BehaviorHints `json:"behaviorHints,omitempty"`
}

// BehaviorHints mirrors Stremio's stream.behaviorHints object:
// notWebReady + proxyHeaders for a direct, non-proxied video URL.
type BehaviorHints struct {
	NotWebReady  bool          `json:"notWebReady,omitempty"`
	BingeGroup   string        `json:"bingeGroup,omitempty"`
	ProxyHeaders *ProxyHeaders `json:"proxyHeaders,omitempty"`
}

type ProxyHeaders struct {
	Request map[string]string `json:"request,omitempty"`
}

// StreamResponse wraps a stream request's response envelope.
type StreamResponse struct {
	Streams []StreamItem `json:"streams"`
}
