// Package engine implements the hybrid recommendation scoring described in spec.md §4.8:
// vector-similarity candidate retrieval fused with a heuristic layer, then a per-source
// diversity filter before top-N selection.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"learnfeed/internal/domain/entity"
	"learnfeed/internal/repository"
)

// Config exposes the hybrid's tunable weights, defaulting to spec.md's own numbers. Resolves
// spec.md §9's open question ("should these be configurable") in favor of yes.
type Config struct {
	VectorWeight    float64 // weight of vector_similarity in the fused base score
	HeuristicWeight float64 // weight of the heuristic composite in the fused base score

	SourcePrefWeight    float64
	RecencyWeight       float64
	VoteSentimentWeight float64
	RecencyHalfLifeDays float64

	CandidateMultiplier int // k = CandidateMultiplier * N for the vector search
	RecencyWindowDays   int // candidate age ceiling in days

	DiversityCap       int       // max admitted resources per source
	DiversityPenalties []float64 // subtracted from base_score on the 2nd, 3rd, ... admission
}

func DefaultConfig() Config {
	return Config{
		VectorWeight:        0.7,
		HeuristicWeight:     0.3,
		SourcePrefWeight:    0.5,
		RecencyWeight:       0.3,
		VoteSentimentWeight: 0.2,
		RecencyHalfLifeDays: 30,
		CandidateMultiplier: 10,
		RecencyWindowDays:   90,
		DiversityCap:        3,
		DiversityPenalties:  []float64{0.02, 0.04, 0.05},
	}
}

// RecommendRequest carries everything the hybrid needs for one (user, feed type, date) call.
type RecommendRequest struct {
	FeedType               entity.Kind
	Date                   time.Time
	Count                  int
	Profile                entity.UserProfile
	Votes                  []entity.VoteWithResource
	SeenIDs                []int64
	RecentlyRecommendedIDs []int64
}

// Scored is one ranked candidate, ready for the Feed Generator to assign a position.
type Scored struct {
	ResourceID int64
	Score      float64
}

// Engine scores and ranks candidate resources for a single feed generation call.
type Engine struct {
	vectorIndex repository.VectorIndex
	resources   repository.ResourceRepository
	config      Config
}

func New(vectorIndex repository.VectorIndex, resources repository.ResourceRepository, config Config) *Engine {
	return &Engine{vectorIndex: vectorIndex, resources: resources, config: config}
}

// Recommend runs Phases 1-5 of spec.md §4.8: candidate retrieval, heuristic scoring, fusion,
// diversity filtering, and top-N selection.
func (e *Engine) Recommend(ctx context.Context, req RecommendRequest) ([]Scored, error) {
	vectorSim, ids, err := e.retrieveCandidates(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "recommendation engine: candidate retrieval failed, returning empty",
			slog.String("feed_type", string(req.FeedType)), slog.Any("error", err))
		return nil, nil
	}
	if len(ids) == 0 {
		return nil, nil
	}

	candidates, err := e.resources.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("engine: load candidate resources: %w", err)
	}

	voteCounts := buildVoteSentiment(req.Votes)

	type scoredCandidate struct {
		resourceID int64
		sourceID   int64
		baseScore  float64
	}
	scoredCandidates := make([]scoredCandidate, 0, len(candidates))
	for _, r := range candidates {
		if r == nil {
			continue
		}
		heuristic := e.heuristicScore(req, r, voteCounts)
		base := e.config.VectorWeight*vectorSim[r.ID] + e.config.HeuristicWeight*heuristic
		scoredCandidates = append(scoredCandidates, scoredCandidate{
			resourceID: r.ID,
			sourceID:   r.SourceID,
			baseScore:  base,
		})
	}

	sort.SliceStable(scoredCandidates, func(i, j int) bool {
		return scoredCandidates[i].baseScore > scoredCandidates[j].baseScore
	})

	sourceCounts := make(map[int64]int)
	final := make([]Scored, 0, len(scoredCandidates))
	for _, c := range scoredCandidates {
		if c.sourceID != 0 {
			sourceCounts[c.sourceID]++
			if sourceCounts[c.sourceID] > e.config.DiversityCap {
				continue
			}
			if rank := sourceCounts[c.sourceID] - 1; rank >= 1 && rank-1 < len(e.config.DiversityPenalties) {
				c.baseScore -= e.config.DiversityPenalties[rank-1]
			}
		}
		final = append(final, Scored{ResourceID: c.resourceID, Score: c.baseScore})
	}

	// final is already in descending base-score order: the diversity loop above walks
	// scoredCandidates (sorted by baseScore) in order and only ever appends. The per-admission
	// penalty is folded into Score for the caller's transparency, not as a re-ranking signal, so
	// top-N is taken in that scan order rather than by re-sorting on the penalized Score.
	if len(final) > req.Count {
		final = final[:req.Count]
	}
	return final, nil
}

// retrieveCandidates implements Phase 1: a vector search keyed on the profile's interest
// embedding when one exists, or a recency-ordered fallback from the Resource Store otherwise.
func (e *Engine) retrieveCandidates(ctx context.Context, req RecommendRequest) (map[int64]float64, []int64, error) {
	excluded := append(append([]int64{}, req.SeenIDs...), req.RecentlyRecommendedIDs...)
	since := req.Date.AddDate(0, 0, -e.config.RecencyWindowDays)
	k := e.config.CandidateMultiplier * req.Count

	vectorSim := make(map[int64]float64)

	if req.Profile.Embedding != nil {
		hits, err := e.vectorIndex.Search(ctx, req.Profile.Embedding, k, repository.VectorSearchFilters{
			Kind:     req.FeedType,
			Excluded: excluded,
			Since:    since,
		})
		if err != nil {
			return nil, nil, err
		}
		ids := make([]int64, 0, len(hits))
		for _, h := range hits {
			vectorSim[h.ResourceID] = h.Similarity
			ids = append(ids, h.ResourceID)
		}
		return vectorSim, ids, nil
	}

	kind := req.FeedType
	resources, err := e.resources.List(ctx, repository.ResourceFilters{
		Kind:     &kind,
		Excluded: excluded,
		Since:    &since,
	})
	if err != nil {
		return nil, nil, err
	}
	if len(resources) > k {
		resources = resources[:k]
	}
	ids := make([]int64, 0, len(resources))
	for _, r := range resources {
		vectorSim[r.ID] = 0.5
		ids = append(ids, r.ID)
	}
	return vectorSim, ids, nil
}

// heuristicScore implements Phase 2's composite: 0.5·source_pref + 0.3·recency + 0.2·vote_sentiment.
func (e *Engine) heuristicScore(req RecommendRequest, r *entity.Resource, voteCounts map[int64][2]int) float64 {
	ageDays := req.Date.Sub(r.CreatedAt).Hours() / 24
	recency := math.Exp(-ageDays / e.config.RecencyHalfLifeDays)
	if recency < 0 {
		recency = 0
	}
	if recency > 1 {
		recency = 1
	}

	sourcePref := 0.5
	if r.SourceID != 0 {
		if v, ok := req.Profile.SourcePreference[r.SourceID]; ok {
			sourcePref = v
		}
	}

	voteSentiment := 0.5
	if counts, ok := voteCounts[r.SourceID]; ok {
		up, down := counts[0], counts[1]
		if up+down > 0 {
			voteSentiment = float64(up) / float64(up+down)
		}
	}

	return e.config.SourcePrefWeight*sourcePref +
		e.config.RecencyWeight*recency +
		e.config.VoteSentimentWeight*voteSentiment
}

// buildVoteSentiment tallies, per source, how many of the user's votes on resources from that
// source were up versus down.
func buildVoteSentiment(votes []entity.VoteWithResource) map[int64][2]int {
	counts := make(map[int64][2]int)
	for _, v := range votes {
		c := counts[v.Resource.SourceID]
		if v.Vote.VoteType == entity.VoteUp {
			c[0]++
		} else {
			c[1]++
		}
		counts[v.Resource.SourceID] = c
	}
	return counts
}
