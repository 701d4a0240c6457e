package domain

// AdapterKind categorises an adapter by cost class. Cheap adapters use
// plain HTTP; expensive adapters drive a headless browser and share a
// single warmed-up instance guarded by the expensive semaphore.
type AdapterKind string

const (
	AdapterCheap     AdapterKind = "cheap"
	AdapterExpensive AdapterKind = "expensive"
)

// Provides describes what an adapter's results can be used for.
type Provides string

const (
	ProvidesStream   Provides = "stream"
	ProvidesDownload Provides = "download"
	ProvidesBoth     Provides = "both"
)

// Query is what the invoker passes to an adapter's Search method: a
// single free-text query plus structured season/episode selectors.
// Season/episode are never folded into Text.
type Query struct {
	Text     string
	Category TorznabCategory
	Season   *int
	Episode  *int
}
