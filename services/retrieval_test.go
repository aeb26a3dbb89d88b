package services

import (
	"context"
	"errors"
	"testing"

	"github.com/OussamaHaimour/chatbot-HCP/models"
)

type fakeSearcher struct {
	curated      []models.ScoredChunk
	owned        []models.ScoredChunk
	curatedErr   error
	ownedErr     error
	ownedQueried bool
}

func (f *fakeSearcher) TopCuratedChunks(ctx context.Context, queryVec []float32, limit int) ([]models.ScoredChunk, error) {
	return f.curated, f.curatedErr
}

func (f *fakeSearcher) TopOwnedChunks(ctx context.Context, queryVec []float32, userID int64, limit int) ([]models.ScoredChunk, error) {
	f.ownedQueried = true
	return f.owned, f.ownedErr
}

func scored(text string, similarity float64) models.ScoredChunk {
	return models.ScoredChunk{ChunkText: text, Similarity: similarity}
}

func TestSearchPrefersCuratedTier(t *testing.T) {
	searcher := &fakeSearcher{
		curated: []models.ScoredChunk{scored("curated", 0.9)},
		owned:   []models.ScoredChunk{scored("personal", 0.95)},
	}
	retriever := NewRetriever(searcher, 0.15, 5)

	results, err := retriever.Search(context.Background(), []float32{0.1}, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ChunkText != "curated" {
		t.Fatalf("expected curated result, got %+v", results)
	}
	if results[0].Tier != models.TierCurated {
		t.Fatalf("tier = %q, want %q", results[0].Tier, models.TierCurated)
	}
	if searcher.ownedQueried {
		t.Fatalf("personal tier must not be consulted when curated qualifies")
	}
}

func TestSearchFallsBackToPersonalTier(t *testing.T) {
	searcher := &fakeSearcher{
		curated: []models.ScoredChunk{scored("weak curated", 0.1)},
		owned:   []models.ScoredChunk{scored("personal", 0.4)},
	}
	retriever := NewRetriever(searcher, 0.15, 5)

	results, err := retriever.Search(context.Background(), []float32{0.1}, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ChunkText != "personal" {
		t.Fatalf("expected personal fallback, got %+v", results)
	}
	if results[0].Tier != models.TierPersonal {
		t.Fatalf("tier = %q, want %q", results[0].Tier, models.TierPersonal)
	}
}

func TestSearchThresholdIsStrict(t *testing.T) {
	searcher := &fakeSearcher{
		curated: []models.ScoredChunk{
			scored("at threshold", 0.15),
			scored("just above", 0.1500001),
		},
	}
	retriever := NewRetriever(searcher, 0.15, 5)

	results, err := retriever.Search(context.Background(), []float32{0.1}, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ChunkText != "just above" {
		t.Fatalf("expected only the strictly-above candidate, got %+v", results)
	}
}

func TestSearchCapsResults(t *testing.T) {
	var curated []models.ScoredChunk
	for i := 0; i < 8; i++ {
		curated = append(curated, scored("chunk", 0.9-float64(i)*0.05))
	}
	searcher := &fakeSearcher{curated: curated}
	retriever := NewRetriever(searcher, 0.15, 5)

	results, err := retriever.Search(context.Background(), []float32{0.1}, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Fatalf("results not ordered by similarity descending")
		}
	}
}

func TestSearchEmptyWhenNothingQualifies(t *testing.T) {
	searcher := &fakeSearcher{
		curated: []models.ScoredChunk{scored("weak", 0.05)},
		owned:   []models.ScoredChunk{scored("weaker", 0.01)},
	}
	retriever := NewRetriever(searcher, 0.15, 5)

	results, err := retriever.Search(context.Background(), []float32{0.1}, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %+v", results)
	}
}

func TestSearchPropagatesErrors(t *testing.T) {
	wantErr := errors.New("db down")
	retriever := NewRetriever(&fakeSearcher{curatedErr: wantErr}, 0.15, 5)

	if _, err := retriever.Search(context.Background(), []float32{0.1}, 7); !errors.Is(err, wantErr) {
		t.Fatalf("expected propagated error, got %v", err)
	}
}
