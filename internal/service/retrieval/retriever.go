package retrieval

import (
	"context"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/pkg/log"
)

// Searcher is the slice of the index the retriever needs.
type Searcher interface {
	Query(ctx context.Context, queryText string, topK int, filter *core.Filter) ([]core.RetrievalCandidate, error)
}

// Retriever ranks index candidates and drops everything under the similarity
// floor. An empty result is a valid outcome the caller must handle, not an
// error: feeding weak matches into a token-bounded context is worse than
// admitting there is no evidence.
type Retriever struct {
	index Searcher
}

func NewRetriever(index Searcher) *Retriever {
	return &Retriever{index: index}
}

func (r *Retriever) Retrieve(ctx context.Context, queryText string, topK int, minSimilarity float64) ([]core.RetrievalCandidate, error) {
	candidates, err := r.index.Query(ctx, queryText, topK, nil)
	if err != nil {
		return nil, err
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if c.Score >= minSimilarity {
			kept = append(kept, c)
		}
	}

	log.FromCtx(ctx).Debug().
		Int("ranked", len(candidates)).
		Int("kept", len(kept)).
		Float64("min_similarity", minSimilarity).
		Msg("retrieval")

	return kept, nil
}
