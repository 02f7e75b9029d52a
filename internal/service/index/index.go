package index

import (
	"context"
	"fmt"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/pkg/log"
)

// Index joins the embedding backend with the vector store: the write path
// vectorizes chunks before persisting them, the read path vectorizes queries
// before searching. It is the only stateful component of the pipeline.
type Index struct {
	embedder core.Embedder
	store    core.VectorIndex
}

func New(embedder core.Embedder, store core.VectorIndex) *Index {
	return &Index{embedder: embedder, store: store}
}

// Upsert attaches an embedding when the chunk has none, then writes it keyed
// by chunk id. A vectorization failure is an EmbeddingError scoped to this
// chunk; the caller decides whether the batch continues.
func (i *Index) Upsert(ctx context.Context, chunk *core.Chunk) error {
	if chunk.Embedding == nil {
		vec, err := i.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return core.NewEmbeddingError(err, "failed to embed chunk %s", shortID(chunk.ID))
		}
		chunk.Embedding = vec
	}

	if err := i.store.Upsert(ctx, chunk); err != nil {
		return core.NewRetrievalError(err, "failed to store chunk %s", shortID(chunk.ID))
	}
	return nil
}

// Query embeds the query text and returns the topK nearest chunks. An empty
// index yields an empty result, never an error.
func (i *Index) Query(ctx context.Context, queryText string, topK int, filter *core.Filter) ([]core.RetrievalCandidate, error) {
	vec, err := i.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, core.NewRetrievalError(err, "failed to embed query")
	}

	candidates, err := i.store.Search(ctx, vec, topK, filter)
	if err != nil {
		return nil, core.NewRetrievalError(err, "index search failed")
	}

	log.FromCtx(ctx).Debug().
		Int("top_k", topK).
		Int("candidates", len(candidates)).
		Msg("index query")

	return candidates, nil
}

func (i *Index) Has(ctx context.Context, chunkID string) (bool, error) {
	return i.store.Has(ctx, chunkID)
}

func (i *Index) ChunkIDs(ctx context.Context, sourceID string) ([]string, error) {
	return i.store.ChunkIDs(ctx, sourceID)
}

func (i *Index) DeleteChunks(ctx context.Context, chunkIDs []string) (int, error) {
	return i.store.DeleteChunks(ctx, chunkIDs)
}

// DeleteSource removes every chunk of a source and returns the count.
func (i *Index) DeleteSource(ctx context.Context, sourceID string) (int, error) {
	n, err := i.store.DeleteSource(ctx, sourceID)
	if err != nil {
		return 0, core.NewRetrievalError(err, "failed to delete source %s", sourceID)
	}
	return n, nil
}

func (i *Index) Count(ctx context.Context) (int, error) {
	return i.store.Count(ctx)
}

// Health probes store reachability for the health_check capability.
func (i *Index) Health(ctx context.Context) error {
	if err := i.store.Ping(ctx); err != nil {
		return fmt.Errorf("index store unreachable: %w", err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
