package core

import "context"

// VectorIndex stores chunks keyed by their deterministic id and answers
// nearest-neighbor searches. The index is the only shared mutable resource in
// the pipeline: implementations must let Search run concurrently with Upsert
// without ever exposing a half-written chunk.
type VectorIndex interface {
	// Upsert writes a chunk with its embedding attached. Writing an existing
	// id overwrites; content changes produce new ids by construction.
	Upsert(ctx context.Context, chunk *Chunk) error
	// Has reports whether a chunk id is already present.
	Has(ctx context.Context, chunkID string) (bool, error)
	// Search returns at most topK candidates by descending cosine similarity.
	// Ties break by smaller position, then lexical chunk id. An empty index
	// yields an empty slice, never an error.
	Search(ctx context.Context, vector []float32, topK int, filter *Filter) ([]RetrievalCandidate, error)
	// ChunkIDs lists the stored ids for one source.
	ChunkIDs(ctx context.Context, sourceID string) ([]string, error)
	// DeleteChunks removes specific ids, returning how many went away.
	DeleteChunks(ctx context.Context, chunkIDs []string) (int, error)
	// DeleteSource removes every chunk of a source, returning the count.
	DeleteSource(ctx context.Context, sourceID string) (int, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// SourceRepository records ingestion origins.
type SourceRepository interface {
	SaveSource(ctx context.Context, src Source) error
	GetSource(ctx context.Context, id string) (*Source, error)
	ListSources(ctx context.Context) ([]Source, error)
	RemoveSource(ctx context.Context, id string) error
}

// TurnRepository keeps the append-only per-session history.
type TurnRepository interface {
	AppendTurn(ctx context.Context, turn ConversationTurn) error
	// RecentTurns returns up to limit turns in chronological order.
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]ConversationTurn, error)
	// PruneTurns drops everything but the newest keep turns of a session.
	PruneTurns(ctx context.Context, sessionID string, keep int) (int, error)
}
