package host

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/internal/service/index"
	"github.com/sandevgo/bizbot/internal/service/ingest"
	"github.com/sandevgo/bizbot/internal/service/retrieval"
	"github.com/sandevgo/bizbot/pkg/log"
)

// Host is the orchestration core behind every calling surface. It exposes the
// query, ingest and health_check capabilities uniformly, so no caller ever
// branches on source types or backing components.
type Host struct {
	retriever   *retrieval.Retriever
	index       *index.Index
	coordinator *ingest.Coordinator
	model       core.ModelClient
	turns       core.TurnRepository
	cfg         core.RetrievalConfig
	timeout     time.Duration

	// One active turn per session; overlapping Asks serialize here.
	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

func New(
	retriever *retrieval.Retriever,
	idx *index.Index,
	coordinator *ingest.Coordinator,
	model core.ModelClient,
	turns core.TurnRepository,
	cfg core.RetrievalConfig,
	timeout time.Duration,
) *Host {
	return &Host{
		retriever:   retriever,
		index:       idx,
		coordinator: coordinator,
		model:       model,
		turns:       turns,
		cfg:         cfg,
		timeout:     timeout,
		sessions:    make(map[string]*sync.Mutex),
	}
}

type AskRequest struct {
	SessionID string
	Query     string
	// Zero values fall back to the configured defaults.
	TopK          int
	MinSimilarity float64
	Timeout       time.Duration
}

type AskResult struct {
	Answer     string   `json:"answer"`
	Citations  []string `json:"citations"`
	Confidence float64  `json:"confidence"`
	NoEvidence bool     `json:"no_evidence"`
}

// Ask runs one full query turn: Received -> Retrieving -> Assembling ->
// Dispatched -> Completed or Failed. Retrieval and assembly are synchronous;
// the model dispatch is the single suspension point and honors the caller
// timeout. A failed turn leaves index and history untouched beyond its own
// failure record.
func (h *Host) Ask(ctx context.Context, req AskRequest) (*AskResult, error) {
	unlock := h.lockSession(req.SessionID)
	defer unlock()

	t := newTurn(req.SessionID, req.Query)

	if strings.TrimSpace(req.Query) == "" {
		// Rejected in Received; no transition happens.
		return nil, core.NewInvalidQueryError("query must not be empty")
	}

	topK := req.TopK
	if topK <= 0 {
		topK = h.cfg.GetTopK()
	}
	minSim := req.MinSimilarity
	if minSim <= 0 {
		minSim = h.cfg.GetMinSimilarity()
	}

	if err := t.transition(ctx, StateRetrieving); err != nil {
		return nil, err
	}
	candidates, err := h.retriever.Retrieve(ctx, req.Query, topK, minSim)
	if err != nil {
		return nil, h.fail(ctx, t, err)
	}

	if err := t.transition(ctx, StateAssembling); err != nil {
		return nil, err
	}
	block := retrieval.Assemble(candidates, h.cfg.GetMaxContextTokens())

	if err := t.transition(ctx, StateDispatched); err != nil {
		return nil, err
	}
	answer, err := h.dispatch(ctx, req, block)
	if err != nil {
		return nil, h.fail(ctx, t, err)
	}

	if err := t.transition(ctx, StateCompleted); err != nil {
		return nil, err
	}

	h.appendTurn(ctx, core.ConversationTurn{
		SessionID: req.SessionID,
		Query:     req.Query,
		Response:  answer,
		Citations: block.Citations,
		CreatedAt: time.Now().UTC(),
	})

	return &AskResult{
		Answer:     answer,
		Citations:  block.Citations,
		Confidence: confidence(block),
		NoEvidence: block.Empty(),
	}, nil
}

// dispatch builds the single structured model request and waits for the
// response under the turn timeout. No partial output survives a timeout.
func (h *Host) dispatch(ctx context.Context, req AskRequest, block core.ContextBlock) (string, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = h.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	history, err := h.history(ctx, req.SessionID)
	if err != nil {
		return "", core.NewRetrievalError(err, "failed to load session history")
	}

	resp, err := h.model.Generate(ctx, core.ModelRequest{
		Query:      req.Query,
		Chunks:     citationChunks(block),
		History:    history,
		NoEvidence: block.Empty(),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Caller went away; not a model fault.
			return "", err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", core.NewTimeoutError(err, "model dispatch exceeded %s", timeout)
		}
		var tagged *core.Error
		if errors.As(err, &tagged) {
			return "", err
		}
		return "", core.NewModelClientError(err, false, "model dispatch failed")
	}
	return resp.Answer, nil
}

// citationChunks tags each included chunk with the citation id of its source,
// in first-appearance order ([S1], [S2], ...).
func citationChunks(block core.ContextBlock) []core.ContextChunk {
	ids := make(map[string]string, len(block.Citations))
	for i, sourceID := range block.Citations {
		ids[sourceID] = fmt.Sprintf("S%d", i+1)
	}

	chunks := make([]core.ContextChunk, 0, len(block.Candidates))
	for _, c := range block.Candidates {
		chunks = append(chunks, core.ContextChunk{
			ChunkID:    c.ChunkID,
			Text:       c.Chunk.Text,
			CitationID: ids[c.Chunk.SourceID],
		})
	}
	return chunks
}

func (h *Host) history(ctx context.Context, sessionID string) ([]core.HistoryTurn, error) {
	turns, err := h.turns.RecentTurns(ctx, sessionID, h.cfg.GetMaxHistoryTurns())
	if err != nil {
		return nil, err
	}

	var history []core.HistoryTurn
	for _, t := range turns {
		if t.Failed {
			continue
		}
		history = append(history, core.HistoryTurn{Query: t.Query, Answer: t.Response})
	}
	return history, nil
}

// fail moves the turn to Failed, records it with a NULL response and the
// taxonomy tag, and hands back the structured error.
func (h *Host) fail(ctx context.Context, t *turn, err error) error {
	if terr := t.transition(ctx, StateFailed); terr != nil {
		log.FromCtx(ctx).Error().Err(terr).Msg("turn state corrupted")
	}

	tag, _ := core.TagOf(err)
	h.appendTurn(ctx, core.ConversationTurn{
		SessionID:  t.sessionID,
		Query:      t.query,
		Failed:     true,
		FailureTag: string(tag),
		CreatedAt:  time.Now().UTC(),
	})

	log.FromCtx(ctx).Error().Err(err).
		Str("component", "host").
		Str("session_id", t.sessionID).
		Str("tag", string(tag)).
		Msg("turn failed")

	return err
}

func (h *Host) appendTurn(ctx context.Context, turn core.ConversationTurn) {
	logger := log.FromCtx(ctx)
	if err := h.turns.AppendTurn(ctx, turn); err != nil {
		logger.Error().Err(err).Msg("failed to record turn")
		return
	}
	// Retention policy: sessions never grow past the configured turn count.
	keep := h.cfg.GetMaxHistoryTurns()
	if keep > 0 {
		if _, err := h.turns.PruneTurns(ctx, turn.SessionID, keep); err != nil {
			logger.Error().Err(err).Msg("failed to prune session history")
		}
	}
}

// confidence averages 1/(1+distance) over the included candidates,
// with distance = 1 - similarity score.
func confidence(block core.ContextBlock) float64 {
	if block.Empty() {
		return 0
	}
	var sum float64
	for _, c := range block.Candidates {
		sum += 1 / (2 - c.Score)
	}
	return sum / float64(len(block.Candidates))
}

// IngestSource exposes the ingest capability.
func (h *Host) IngestSource(ctx context.Context, adapter core.SourceAdapter) (*core.IngestionReport, error) {
	return h.coordinator.Ingest(ctx, adapter)
}

// RemoveSource drops a source and all of its chunks.
func (h *Host) RemoveSource(ctx context.Context, sourceID string) (int, error) {
	return h.coordinator.RemoveSource(ctx, sourceID)
}

// Health probes the components behind the three capabilities. The retriever
// is a pure function over the index, so its health follows the store's.
func (h *Host) Health(ctx context.Context) core.HealthStatus {
	status := core.HealthStatus{}

	if err := h.index.Health(ctx); err == nil {
		status.IndexOK = true
		status.RetrieverOK = true
	} else {
		log.FromCtx(ctx).Warn().Err(err).Msg("index health probe failed")
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := h.model.Models(probeCtx); err == nil {
		status.ModelClientOK = true
	} else {
		log.FromCtx(ctx).Warn().Err(err).Msg("model client health probe failed")
	}

	return status
}

func (h *Host) lockSession(sessionID string) func() {
	h.mu.Lock()
	m, ok := h.sessions[sessionID]
	if !ok {
		m = &sync.Mutex{}
		h.sessions[sessionID] = m
	}
	h.mu.Unlock()

	m.Lock()
	return m.Unlock
}
