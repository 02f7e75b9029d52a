package retrieval

import (
	"strings"

	"github.com/sandevgo/bizbot/internal/core"
)

// Assemble greedily packs candidates into a token-bounded context block.
// Candidates arrive in descending score order and are taken whole: a chunk
// that would overflow the budget is skipped, never truncated mid-token, and a
// skipped chunk does not block later smaller ones. Overlapping windows from
// the same source deduplicate keeping the higher-scoring one.
func Assemble(candidates []core.RetrievalCandidate, maxContextTokens int) core.ContextBlock {
	block := core.ContextBlock{
		Candidates: []core.RetrievalCandidate{},
		Citations:  []string{},
	}

	seenSource := make(map[string]bool)
	for _, candidate := range candidates {
		if candidate.Chunk == nil {
			continue
		}
		if block.TokenCount+candidate.Chunk.TokenCount > maxContextTokens {
			continue
		}
		if overlapsIncluded(block.Candidates, candidate) {
			continue
		}

		block.Candidates = append(block.Candidates, candidate)
		block.TokenCount += candidate.Chunk.TokenCount

		if !seenSource[candidate.Chunk.SourceID] {
			seenSource[candidate.Chunk.SourceID] = true
			block.Citations = append(block.Citations, candidate.Chunk.SourceID)
		}
	}

	return block
}

// overlapsIncluded reports whether a candidate repeats text already included
// from the same source. Chunker overlap makes adjacent windows share trailing
// sentences, so containment either way counts as overlap. Included candidates
// scored at least as high, so the incoming one loses.
func overlapsIncluded(included []core.RetrievalCandidate, candidate core.RetrievalCandidate) bool {
	for _, in := range included {
		if in.Chunk.SourceID != candidate.Chunk.SourceID {
			continue
		}
		if strings.Contains(in.Chunk.Text, candidate.Chunk.Text) ||
			strings.Contains(candidate.Chunk.Text, in.Chunk.Text) {
			return true
		}
	}
	return false
}
