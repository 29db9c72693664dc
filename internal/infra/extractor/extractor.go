// Package extractor turns raw fetched content into a list of candidate resources using an
// LLM. It mirrors the summarization adapters it is grounded on: a shared interface, two
// provider implementations selected by configuration, and the same circuit breaker / retry
// wiring used for every outbound AI call in this worker.
package extractor

import (
	"context"
	"errors"

	"learnfeed/internal/domain/entity"
)

// ExtractRequest carries the inputs the LLM needs to propose candidate resources.
type ExtractRequest struct {
	SourceURL      string
	Content        string
	SourceCategory entity.Kind
}

// Candidate is a single resource proposed by the LLM, not yet persisted.
type Candidate struct {
	Title       string
	URL         string
	Description string
	Kind        entity.Kind
}

// ExtractResult is the outcome of one extraction call. Candidates is nil (not an error) when
// the model's response could not be parsed; ParseErr carries the diagnostic for logging.
type ExtractResult struct {
	Candidates []Candidate
	ParseErr   error
}

// Extractor translates fetched content into candidate resources. Implementations must treat
// malformed model output as non-fatal (empty Candidates, ParseErr set) and reserve returned
// errors for conditions the Ingestion Job should treat as job-fatal, such as ErrAuth.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (ExtractResult, error)
}

// maxCandidates caps how many resources a single extraction call may propose, per source run.
const maxCandidates = 20

// ErrAuth is returned when the provider rejects credentials (401/403). The Ingestion Job
// treats this as fatal to the run rather than a per-source failure, since every subsequent
// source would fail identically.
var ErrAuth = entity.ErrAuth

// ErrEmptyContent is returned when there is nothing worth sending to the model.
var ErrEmptyContent = errors.New("extractor: empty content")
