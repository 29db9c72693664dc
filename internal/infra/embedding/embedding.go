// Package embedding turns resource text into fixed-dimension vectors for the Vector Index.
package embedding

import (
	"context"
	"errors"
	"math"
)

// Embedder converts a batch of texts into L2-normalized embedding vectors, one per input, in
// the same order. Implementations must defend against an all-empty input batch and must not
// assume the underlying provider already normalizes its output. Callers are expected to pass
// each resource's entity.Resource.EmbeddingText() output, which already falls back to the
// title when a description is absent; an individual empty entry is only possible for a
// resource with an empty title, which the domain layer rejects before it reaches here.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrInvalidInput is returned when every text in the batch is empty.
var ErrInvalidInput = errors.New("embedding: all input texts are empty")

// ErrAuth is returned when the provider rejects credentials; the Ingestion/Reindex job treats
// this as fatal to the run.
var ErrAuth = errors.New("embedding: authentication failed")

// normalize scales v to unit length in place. A zero vector is left unchanged since there is
// no direction to normalize toward.
func normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return
	}
	norm := math.Sqrt(sumSq)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
