// Package profile builds a per-user interest profile from vote history, the embedding half
// feeding the Recommendation Engine's vector search and the source-preference half feeding its
// heuristic scoring.
package profile

import (
	"context"
	"fmt"
	"math"

	"learnfeed/internal/domain/entity"
	"learnfeed/internal/infra/embedding"
	"learnfeed/internal/repository"
)

// Builder computes a UserProfile from a user's full vote history.
type Builder struct {
	votes    repository.VoteRepository
	embedder embedding.Embedder
}

func NewBuilder(votes repository.VoteRepository, embedder embedding.Embedder) *Builder {
	return &Builder{votes: votes, embedder: embedder}
}

// Build implements the four-step profile algorithm: averaged upvote embedding, per-source
// preference normalized into [0,1], and total interaction count.
func (b *Builder) Build(ctx context.Context, userID int64) (entity.UserProfile, error) {
	votes, err := b.votes.GetByUser(ctx, userID)
	if err != nil {
		return entity.UserProfile{}, fmt.Errorf("fetch votes for user %d: %w", userID, err)
	}

	embeddingVec, err := b.buildEmbedding(ctx, votes)
	if err != nil {
		return entity.UserProfile{}, fmt.Errorf("build interest embedding for user %d: %w", userID, err)
	}

	return entity.UserProfile{
		UserID:            userID,
		Embedding:         embeddingVec,
		SourcePreference:  buildSourcePreference(votes),
		TotalInteractions: len(votes),
	}, nil
}

// buildEmbedding averages the embeddings of every upvoted resource, then L2-normalizes the
// mean. Returns a nil vector when the user has no upvotes.
func (b *Builder) buildEmbedding(ctx context.Context, votes []entity.VoteWithResource) ([]float32, error) {
	texts := make([]string, 0, len(votes))
	for _, v := range votes {
		if v.Vote.VoteType != entity.VoteUp {
			continue
		}
		texts = append(texts, v.Resource.EmbeddingText())
	}
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := b.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	mean := make([]float64, dim)
	for _, v := range vectors {
		for i, x := range v {
			mean[i] += float64(x)
		}
	}
	n := float64(len(vectors))
	result := make([]float32, dim)
	var sumSq float64
	for i := range mean {
		mean[i] /= n
		sumSq += mean[i] * mean[i]
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return result, nil
	}
	for i := range mean {
		result[i] = float32(mean[i] / norm)
	}
	return result, nil
}

// buildSourcePreference accumulates +1 per upvote and -0.5 per downvote for each resource's
// source, then min-max normalizes into [0,1]. A uniform 0.5 is assigned when every source has
// the same sum (including the single-source case).
func buildSourcePreference(votes []entity.VoteWithResource) map[int64]float64 {
	sums := make(map[int64]float64)
	for _, v := range votes {
		delta := -0.5
		if v.Vote.VoteType == entity.VoteUp {
			delta = 1.0
		}
		sums[v.Resource.SourceID] += delta
	}
	if len(sums) == 0 {
		return map[int64]float64{}
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, s := range sums {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}

	preference := make(map[int64]float64, len(sums))
	if max == min {
		for sourceID := range sums {
			preference[sourceID] = 0.5
		}
		return preference
	}
	for sourceID, s := range sums {
		preference[sourceID] = (s - min) / (max - min)
	}
	return preference
}
