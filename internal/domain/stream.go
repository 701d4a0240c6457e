package domain

// Quality is the canonical video-quality bucket a RankedStream carries.
// Ordinal values are used directly by the scorer: higher is better.
type Quality int

const (
	QualityUnknown Quality = iota
	QualitySD
	QualityHD720p
	QualityHD1080p
	QualityUHD4K
)

func (q Quality) String() string {
	switch q {
	case QualitySD:
		return "SD"
	case QualityHD720p:
		return "HD 720P"
	case QualityHD1080p:
		return "HD 1080P"
	case QualityUHD4K:
		return "UHD 4K"
	default:
		return ""
	}
}

// Language describes a stream's audio language.
type Language struct {
	Code     string // BCP-47-ish, e.g. "de", "en"
	Label    string // display label, e.g. "German", "English"
	IsDubbed bool
}

// RankedStream is the canonical, normalized representation of one
// (RawSearchResult, HosterLink) pair. URL is always the hoster's embed
// page at this stage, never a resolved CDN URL.
type RankedStream struct {
	URL              string
	HosterNormalized string
	Quality          Quality
	Language         Language
	Size             string
	SizeBytes        int64
	Title            string
	ReleaseName      string
	SourceAdapter    string
	Score            int
}

// ResolvedStream is what a hoster resolver extracts from an embed page.
// If VideoURL equals the embed URL, Headers is empty, the URL carries no
// recognised video extension, and IsHLS is false, the stream is not
// streamable and must be dropped (the echo rule).
type ResolvedStream struct {
	VideoURL string
	Headers  map[string]string
	IsHLS    bool
}

// BehaviorHints mirrors Stremio's stream.behaviorHints object.
type BehaviorHints struct {
	NotWebReady  bool          `json:"notWebReady,omitempty"`
	ProxyHeaders *ProxyHeaders `json:"proxyHeaders,omitempty"`
	BingeGroup   string        `json:"bingeGroup,omitempty"`
}

// ProxyHeaders carries request headers Stremio must send when fetching
// a direct (non-proxied) video URL.
type ProxyHeaders struct {
	Request map[string]string `json:"request,omitempty"`
}

// ClientStream is the final, client-facing entity returned by the
// orchestrator. URL is either a direct video URL or this system's own
// /play/{opaque_id} proxy URL.
type ClientStream struct {
	DisplayName   string
	Description   string
	URL           string
	BehaviorHints *BehaviorHints
}

// CachedStreamLink is what the stream-link cache stores, read by the
// proxy-play endpoint at redirect time.
type CachedStreamLink struct {
	OpaqueID string
	EmbedURL string
	Title    string
	Hoster   string
}
