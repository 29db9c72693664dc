package entity

import "time"

// SourceType identifies how a Source's content is fetched.
type SourceType string

const (
	SourceTypeRSS  SourceType = "rss"
	SourceTypeHTML SourceType = "html"
)

// Source represents a configured origin the ingestion pipeline fetches from. Sources are
// managed outside the worker (by the HTTP API, out of scope here); the worker only reads them.
type Source struct {
	ID   int64
	Name string
	URL  string

	// Category is the fallback Kind applied to a candidate when the LLM Extraction Client
	// omits one.
	Category Kind

	SourceType    SourceType
	Active        bool
	LastFetchedAt *time.Time
}
