package memindex

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/sandevgo/bizbot/internal/core"
)

func chunk(id, sourceID string, position int, origin core.OriginType, embedding []float32) *core.Chunk {
	return &core.Chunk{
		ID:        id,
		SourceID:  sourceID,
		Text:      "text of " + id,
		Metadata:  core.ChunkMetadata{OriginType: origin, Position: position},
		Embedding: embedding,
	}
}

func TestSearchOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()

	// Query along the x axis; scores fall off with the angle.
	_ = s.Upsert(ctx, chunk("c-low", "src", 0, core.OriginWebsite, []float32{0.1, 1}))
	_ = s.Upsert(ctx, chunk("c-high", "src", 1, core.OriginWebsite, []float32{1, 0}))
	_ = s.Upsert(ctx, chunk("c-mid", "src", 2, core.OriginWebsite, []float32{1, 1}))

	got, err := s.Search(ctx, []float32{1, 0}, 10, nil)
	if err != nil {
		t.Fatal(err)
	}

	wantOrder := []string{"c-high", "c-mid", "c-low"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d candidates, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ChunkID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ChunkID, id)
		}
	}
	if got[0].Score <= got[1].Score || got[1].Score <= got[2].Score {
		t.Errorf("scores not descending: %v %v %v", got[0].Score, got[1].Score, got[2].Score)
	}
}

func TestSearchTieBreak(t *testing.T) {
	ctx := context.Background()
	s := New()

	// Identical vectors: ties resolve by position, then chunk id.
	same := []float32{1, 0}
	_ = s.Upsert(ctx, chunk("b-id", "src", 1, core.OriginWebsite, same))
	_ = s.Upsert(ctx, chunk("a-id", "src", 1, core.OriginWebsite, same))
	_ = s.Upsert(ctx, chunk("z-id", "src", 0, core.OriginWebsite, same))

	got, err := s.Search(ctx, same, 10, nil)
	if err != nil {
		t.Fatal(err)
	}

	wantOrder := []string{"z-id", "a-id", "b-id"}
	for i, id := range wantOrder {
		if got[i].ChunkID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ChunkID, id)
		}
	}
}

func TestSearchFilter(t *testing.T) {
	ctx := context.Background()
	s := New()

	v := []float32{1, 0}
	_ = s.Upsert(ctx, chunk("web-1", "site", 0, core.OriginWebsite, v))
	_ = s.Upsert(ctx, chunk("chat-1", "export", 0, core.OriginChatImport, v))

	tests := []struct {
		name   string
		filter *core.Filter
		want   []string
	}{
		{"no filter", nil, []string{"chat-1", "web-1"}},
		{"by origin", &core.Filter{OriginType: core.OriginChatImport}, []string{"chat-1"}},
		{"by source", &core.Filter{SourceID: "site"}, []string{"web-1"}},
		{"no match", &core.Filter{SourceID: "nope"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(ctx, v, 10, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d candidates, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ChunkID != id {
					t.Errorf("position %d: got %s, want %s", i, got[i].ChunkID, id)
				}
			}
		})
	}
}

func TestSearchTopK(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 0; i < 5; i++ {
		_ = s.Upsert(ctx, chunk(fmt.Sprintf("c%d", i), "src", i, core.OriginWebsite, []float32{1, float32(i)}))
	}

	got, err := s.Search(ctx, []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}

	got, err = s.Search(ctx, []float32{1, 0}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("topK=0 should return nothing, got %d", len(got))
	}
}

func TestDeleteSourceCascade(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.Upsert(ctx, chunk("keep", "other", 0, core.OriginWebsite, []float32{1, 0}))
	_ = s.Upsert(ctx, chunk("drop-1", "gone", 0, core.OriginWebsite, []float32{1, 0}))
	_ = s.Upsert(ctx, chunk("drop-2", "gone", 1, core.OriginWebsite, []float32{1, 0}))

	removed, err := s.DeleteSource(ctx, "gone")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("removed %d, want 2", removed)
	}

	count, _ := s.Count(ctx)
	if count != 1 {
		t.Errorf("count %d, want 1", count)
	}
	if ok, _ := s.Has(ctx, "keep"); !ok {
		t.Error("unrelated chunk went away")
	}
}

func TestChunkIDsSorted(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Upsert(ctx, chunk("b", "src", 1, core.OriginWebsite, []float32{1}))
	_ = s.Upsert(ctx, chunk("a", "src", 0, core.OriginWebsite, []float32{1}))

	ids, err := s.ChunkIDs(ctx, "src")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("got %v, want [a b]", ids)
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = s.Upsert(ctx, chunk(fmt.Sprintf("c%d", i), "src", i, core.OriginWebsite, []float32{1, float32(i)}))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.Search(ctx, []float32{1, 0}, 5, nil)
		}()
	}
	wg.Wait()

	count, _ := s.Count(ctx)
	if count != 20 {
		t.Errorf("count %d, want 20", count)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"scale invariant", []float32{2, 0}, []float32{5, 0}, 1},
		{"dim mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
