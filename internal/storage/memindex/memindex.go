package memindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/sandevgo/bizbot/internal/core"
)

// Store is a brute-force in-memory vector index. It honors the same ordering
// contract as the sqlite store: descending cosine similarity, ties broken by
// smaller position, then lexical chunk id. The RWMutex keeps concurrent
// queries consistent during upserts; a chunk is visible only once fully
// written.
type Store struct {
	mu     sync.RWMutex
	chunks map[string]core.Chunk
}

func New() *Store {
	return &Store{chunks: make(map[string]core.Chunk)}
}

func (s *Store) Upsert(ctx context.Context, chunk *core.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[chunk.ID] = *chunk
	return nil
}

func (s *Store) Has(ctx context.Context, chunkID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chunks[chunkID]
	return ok, nil
}

func (s *Store) Search(ctx context.Context, vector []float32, topK int, filter *core.Filter) ([]core.RetrievalCandidate, error) {
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []core.RetrievalCandidate
	for id := range s.chunks {
		chunk := s.chunks[id]
		if !filter.Match(&chunk) {
			continue
		}
		candidates = append(candidates, core.RetrievalCandidate{
			ChunkID: chunk.ID,
			Score:   CosineSimilarity(vector, chunk.Embedding),
			Chunk:   &chunk,
		})
	}

	SortCandidates(candidates)
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

func (s *Store) ChunkIDs(ctx context.Context, sourceID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, chunk := range s.chunks {
		if chunk.SourceID == sourceID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) DeleteChunks(ctx context.Context, chunkIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, id := range chunkIDs {
		if _, ok := s.chunks[id]; ok {
			delete(s.chunks, id)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) DeleteSource(ctx context.Context, sourceID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, chunk := range s.chunks {
		if chunk.SourceID == sourceID {
			delete(s.chunks, id)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// SortCandidates applies the deterministic ranking order shared by every
// store implementation.
func SortCandidates(candidates []core.RetrievalCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		pi, pj := candidates[i].Chunk.Metadata.Position, candidates[j].Chunk.Metadata.Position
		if pi != pj {
			return pi < pj
		}
		return candidates[i].ChunkID < candidates[j].ChunkID
	})
}

// CosineSimilarity is 1 for identical directions, 0 for orthogonal vectors.
// Mismatched or zero vectors score 0 rather than erroring.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
