package services

import (
	"context"

	"github.com/OussamaHaimour/chatbot-HCP/internal/logger"
	"github.com/OussamaHaimour/chatbot-HCP/models"
)

// ChunkSearcher returns similarity-scored candidates per scope, ordered by
// score descending. The store computes scores with the database's cosine
// distance operator; the retriever applies the threshold and cap.
type ChunkSearcher interface {
	TopCuratedChunks(ctx context.Context, queryVec []float32, limit int) ([]models.ScoredChunk, error)
	TopOwnedChunks(ctx context.Context, queryVec []float32, userID int64, limit int) ([]models.ScoredChunk, error)
}

// Retriever executes the two-tier priority search: curated content is
// authoritative and consulted first; the requester's personal uploads are the
// fallback. Results below or at the threshold are discarded.
type Retriever struct {
	searcher  ChunkSearcher
	threshold float64
	limit     int
}

func NewRetriever(searcher ChunkSearcher, threshold float64, limit int) *Retriever {
	return &Retriever{searcher: searcher, threshold: threshold, limit: limit}
}

// Search runs the priority search for the given query vector on behalf of
// userID. An empty result set means neither tier produced a qualifying chunk.
func (r *Retriever) Search(ctx context.Context, queryVec []float32, userID int64) ([]models.ScoredChunk, error) {
	curated, err := r.searcher.TopCuratedChunks(ctx, queryVec, r.limit)
	if err != nil {
		return nil, err
	}
	if results := r.qualify(curated, models.TierCurated); len(results) > 0 {
		logger.Debug("retrieval served from curated tier", "results", len(results))
		return results, nil
	}

	owned, err := r.searcher.TopOwnedChunks(ctx, queryVec, userID, r.limit)
	if err != nil {
		return nil, err
	}
	if results := r.qualify(owned, models.TierPersonal); len(results) > 0 {
		logger.Debug("retrieval served from personal tier", "results", len(results), "user_id", userID)
		return results, nil
	}

	return nil, nil
}

// qualify keeps candidates strictly above the threshold, preserves the score
// ordering, caps the result count and tags the tier.
func (r *Retriever) qualify(candidates []models.ScoredChunk, tier string) []models.ScoredChunk {
	var results []models.ScoredChunk
	for _, candidate := range candidates {
		if candidate.Similarity <= r.threshold {
			continue
		}
		candidate.Tier = tier
		results = append(results, candidate)
		if len(results) == r.limit {
			break
		}
	}
	return results
}
