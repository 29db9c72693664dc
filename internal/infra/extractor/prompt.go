package extractor

import "fmt"

// buildPrompt constructs the extraction prompt shared by both providers. It instructs strict
// JSON output, forbids inventing URLs or emitting the source URL itself, and caps the list.
func buildPrompt(req ExtractRequest) string {
	return fmt.Sprintf(`You are extracting a list of individual content resources from the text below, fetched from %s.

Rules:
- Output strict JSON only, matching this schema: {"resources": [{"title": "...", "url": "...", "description": "...", "kind": "..."}]}
- Every url must appear verbatim in the content below. Never invent a url.
- Resolve relative urls against %s.
- Do not emit the source url itself or any feed-level metadata as a resource; emit only individual items.
- If an item's kind is unclear, omit the kind field.
- Emit at most 20 resources.
- Output nothing besides the JSON object.

Content:
%s`, req.SourceURL, req.SourceURL, req.Content)
}
