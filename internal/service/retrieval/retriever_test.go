package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/bizbot/internal/core"
)

type stubSearcher struct {
	candidates []core.RetrievalCandidate
	err        error
}

func (s *stubSearcher) Query(ctx context.Context, queryText string, topK int, filter *core.Filter) ([]core.RetrievalCandidate, error) {
	return s.candidates, s.err
}

func candidate(id string, score float64) core.RetrievalCandidate {
	return core.RetrievalCandidate{
		ChunkID: id,
		Score:   score,
		Chunk:   &core.Chunk{ID: id, SourceID: "src", Text: "text " + id, TokenCount: 10},
	}
}

func TestRetrieveSimilarityFloor(t *testing.T) {
	searcher := &stubSearcher{candidates: []core.RetrievalCandidate{
		candidate("high", 0.9),
		candidate("mid", 0.5),
		candidate("low", 0.1),
	}}

	r := NewRetriever(searcher)
	got, err := r.Retrieve(context.Background(), "question", 5, 0.3)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].ChunkID != "high" || got[1].ChunkID != "mid" {
		t.Errorf("unexpected candidates: %v %v", got[0].ChunkID, got[1].ChunkID)
	}
}

func TestRetrieveEmptyIsNotError(t *testing.T) {
	r := NewRetriever(&stubSearcher{})
	got, err := r.Retrieve(context.Background(), "question", 5, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d candidates, want none", len(got))
	}
}

func TestRetrievePropagatesError(t *testing.T) {
	searcher := &stubSearcher{err: core.NewRetrievalError(errors.New("index down"), "search failed")}
	r := NewRetriever(searcher)

	_, err := r.Retrieve(context.Background(), "question", 5, 0.3)
	if !core.IsTag(err, core.TagRetrieval) {
		t.Errorf("want retrieval_error, got %v", err)
	}
}
