// Package fetcher retrieves raw content for a Source's URL, producing the text the LLM
// Extraction Client turns into resource candidates.
package fetcher

import (
	"context"
	"errors"
)

// Fetcher retrieves content from a source URL. Implementations must defend against SSRF,
// enforce a size ceiling, and honor ctx for cancellation and timeout.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResult, error)
}

// FetchResult is the raw material handed to the LLM Extraction Client.
type FetchResult struct {
	Text      string
	Truncated bool
}

// Sentinel errors for fetch operations. The Ingestion Job treats all of these as per-source
// failures: log, skip, continue with the next source.
var (
	ErrInvalidURL  = errors.New("invalid url or unsupported scheme")
	ErrPrivateIP   = errors.New("private ip access denied")
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrTooLarge    = errors.New("content exceeds maximum allowed size")
	ErrTimeout     = errors.New("fetch timed out")
	ErrHTTPStatus  = errors.New("unexpected http status")
	ErrNoContent   = errors.New("no extractable content found")
)
