package retrieval

import (
	"testing"

	"github.com/sandevgo/bizbot/internal/core"
)

func scored(id, sourceID, text string, tokens int, score float64) core.RetrievalCandidate {
	return core.RetrievalCandidate{
		ChunkID: id,
		Score:   score,
		Chunk:   &core.Chunk{ID: id, SourceID: sourceID, Text: text, TokenCount: tokens},
	}
}

func includedIDs(block core.ContextBlock) []string {
	ids := make([]string, 0, len(block.Candidates))
	for _, c := range block.Candidates {
		ids = append(ids, c.ChunkID)
	}
	return ids
}

func TestAssembleBudget(t *testing.T) {
	tests := []struct {
		name       string
		candidates []core.RetrievalCandidate
		budget     int
		wantIDs    []string
		wantTokens int
	}{
		{
			name: "all fit",
			candidates: []core.RetrievalCandidate{
				scored("a", "s1", "alpha", 100, 0.9),
				scored("b", "s2", "beta", 100, 0.8),
			},
			budget:     500,
			wantIDs:    []string{"a", "b"},
			wantTokens: 200,
		},
		{
			name: "oversized chunk skipped, never truncated",
			candidates: []core.RetrievalCandidate{
				scored("big", "s1", "huge", 600, 0.9),
				scored("small", "s2", "tiny", 100, 0.8),
			},
			budget:     500,
			wantIDs:    []string{"small"},
			wantTokens: 100,
		},
		{
			name: "skipped chunk does not block later smaller ones",
			candidates: []core.RetrievalCandidate{
				scored("a", "s1", "alpha", 300, 0.9),
				scored("b", "s2", "beta", 300, 0.8),
				scored("c", "s3", "gamma", 150, 0.7),
			},
			budget:     500,
			wantIDs:    []string{"a", "c"},
			wantTokens: 450,
		},
		{
			name:       "no candidates",
			candidates: nil,
			budget:     500,
			wantIDs:    []string{},
			wantTokens: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := Assemble(tt.candidates, tt.budget)

			got := includedIDs(block)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("included %v, want %v", got, tt.wantIDs)
			}
			for i := range tt.wantIDs {
				if got[i] != tt.wantIDs[i] {
					t.Errorf("included %v, want %v", got, tt.wantIDs)
					break
				}
			}
			if block.TokenCount != tt.wantTokens {
				t.Errorf("token count %d, want %d", block.TokenCount, tt.wantTokens)
			}
		})
	}
}

func TestAssembleOverlapDedup(t *testing.T) {
	// The second chunk's text is contained in the first (chunker overlap);
	// the higher-scoring one wins.
	block := Assemble([]core.RetrievalCandidate{
		scored("a", "s1", "opening hours are nine to five on weekdays", 20, 0.9),
		scored("b", "s1", "nine to five on weekdays", 10, 0.8),
		scored("c", "s2", "nine to five on weekdays", 10, 0.7),
	}, 500)

	got := includedIDs(block)
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("included %v, want [a c] (same-source overlap deduped, other source kept)", got)
	}
}

func TestAssembleCitations(t *testing.T) {
	block := Assemble([]core.RetrievalCandidate{
		scored("a", "site", "alpha", 10, 0.9),
		scored("b", "export", "beta", 10, 0.8),
		scored("c", "site", "gamma", 10, 0.7),
	}, 500)

	if len(block.Citations) != 2 || block.Citations[0] != "site" || block.Citations[1] != "export" {
		t.Errorf("citations %v, want [site export] in first-appearance order", block.Citations)
	}
}

func TestAssembleEmptyBlock(t *testing.T) {
	block := Assemble(nil, 500)
	if !block.Empty() {
		t.Error("expected empty block")
	}
	if block.Candidates == nil || block.Citations == nil {
		t.Error("slices must be initialized, not nil")
	}
}
