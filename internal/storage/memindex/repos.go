package memindex

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sandevgo/bizbot/internal/core"
)

// Sources is the in-memory SourceRepository used with the memory index driver.
type Sources struct {
	mu      sync.RWMutex
	sources map[string]core.Source
}

func NewSources() *Sources {
	return &Sources{sources: make(map[string]core.Source)}
}

func (s *Sources) SaveSource(ctx context.Context, src core.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Immutable once recorded; re-ingestion keeps the first row.
	if _, ok := s.sources[src.ID]; !ok {
		s.sources[src.ID] = src
	}
	return nil
}

func (s *Sources) GetSource(ctx context.Context, id string) (*core.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.sources[id]
	if !ok {
		return nil, fmt.Errorf("source %s not found", id)
	}
	return &src, nil
}

func (s *Sources) ListSources(ctx context.Context) ([]core.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Source, 0, len(s.sources))
	for _, src := range s.sources {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Sources) RemoveSource(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, id)
	return nil
}

// Turns is the in-memory TurnRepository.
type Turns struct {
	mu       sync.RWMutex
	sessions map[string][]core.ConversationTurn
}

func NewTurns() *Turns {
	return &Turns{sessions: make(map[string][]core.ConversationTurn)}
}

func (t *Turns) AppendTurn(ctx context.Context, turn core.ConversationTurn) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[turn.SessionID] = append(t.sessions[turn.SessionID], turn)
	return nil
}

func (t *Turns) RecentTurns(ctx context.Context, sessionID string, limit int) ([]core.ConversationTurn, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	turns := t.sessions[sessionID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]core.ConversationTurn, len(turns))
	copy(out, turns)
	return out, nil
}

func (t *Turns) PruneTurns(ctx context.Context, sessionID string, keep int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	turns := t.sessions[sessionID]
	if keep < 0 || len(turns) <= keep {
		return 0, nil
	}
	dropped := len(turns) - keep
	t.sessions[sessionID] = append([]core.ConversationTurn(nil), turns[dropped:]...)
	return dropped, nil
}
