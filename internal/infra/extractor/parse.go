package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"learnfeed/internal/domain/entity"
)

// wireResponse is the strict JSON schema the prompt demands of the model.
type wireResponse struct {
	Resources []wireCandidate `json:"resources"`
}

type wireCandidate struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

// parseCandidates locates the first '{' through the last '}' in raw, parses it as JSON, and
// drops any entry missing a title or url. A parse failure is not fatal: it yields a nil
// candidate list plus the error for the caller to log.
func parseCandidates(raw string, fallbackKind entity.Kind) ([]Candidate, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < 0 || end < start {
		return nil, fmt.Errorf("no json object found in response")
	}

	var wire wireResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &wire); err != nil {
		return nil, fmt.Errorf("unmarshal extraction response: %w", err)
	}

	candidates := make([]Candidate, 0, len(wire.Resources))
	for _, wc := range wire.Resources {
		if wc.Title == "" || wc.URL == "" {
			continue
		}
		kind := entity.Kind(wc.Kind)
		if !kind.Valid() {
			kind = fallbackKind
		}
		candidates = append(candidates, Candidate{
			Title:       wc.Title,
			URL:         wc.URL,
			Description: wc.Description,
			Kind:        kind,
		})
		if len(candidates) >= maxCandidates {
			break
		}
	}
	return candidates, nil
}
