package index

import (
	"context"
	"testing"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/internal/storage/memindex"
	"github.com/sandevgo/bizbot/test"
)

func TestUpsertEmbedsWhenMissing(t *testing.T) {
	ctx := context.Background()
	embedder := test.NewFakeEmbedder(4)
	idx := New(embedder, memindex.New())

	chunk := &core.Chunk{ID: "c1", SourceID: "s", Text: "some text"}
	if err := idx.Upsert(ctx, chunk); err != nil {
		t.Fatal(err)
	}
	if len(chunk.Embedding) != 4 {
		t.Errorf("embedding dim %d, want 4", len(chunk.Embedding))
	}
}

func TestUpsertKeepsExistingEmbedding(t *testing.T) {
	ctx := context.Background()
	embedder := test.NewFakeEmbedder(4)
	embedder.FailOn["never embedded"] = true
	idx := New(embedder, memindex.New())

	chunk := &core.Chunk{ID: "c1", SourceID: "s", Text: "never embedded", Embedding: []float32{1, 0, 0, 0}}
	if err := idx.Upsert(ctx, chunk); err != nil {
		t.Fatalf("pre-embedded chunk must not hit the embedder: %v", err)
	}
}

func TestUpsertEmbedFailure(t *testing.T) {
	ctx := context.Background()
	embedder := test.NewFakeEmbedder(4)
	embedder.FailOn["doomed"] = true
	idx := New(embedder, memindex.New())

	err := idx.Upsert(ctx, &core.Chunk{ID: "c1", SourceID: "s", Text: "doomed"})
	if !core.IsTag(err, core.TagEmbedding) {
		t.Errorf("want embedding_error, got %v", err)
	}
}

func TestQueryEmbedFailure(t *testing.T) {
	ctx := context.Background()
	embedder := test.NewFakeEmbedder(4)
	embedder.FailOn["doomed"] = true
	idx := New(embedder, memindex.New())

	_, err := idx.Query(ctx, "doomed", 5, nil)
	if !core.IsTag(err, core.TagRetrieval) {
		t.Errorf("query embed failure surfaces as retrieval, got %v", err)
	}
}

func TestQueryEmptyIndex(t *testing.T) {
	ctx := context.Background()
	idx := New(test.NewFakeEmbedder(4), memindex.New())

	got, err := idx.Query(ctx, "anything", 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("empty index returned %d candidates", len(got))
	}
}
