package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/internal/providers/rag"
	"github.com/sandevgo/bizbot/internal/service/index"
	"github.com/sandevgo/bizbot/pkg/log"
)

// Coordinator drives a source adapter through the chunker into the index.
// Ingestion is idempotent: unchanged content re-ingests as skips, changed
// content writes new chunk ids and prunes the stale ones. Per-chunk embedding
// failures are collected into the report and never abort the batch.
type Coordinator struct {
	chunker *rag.Chunker
	index   *index.Index
	sources core.SourceRepository
}

func NewCoordinator(chunker *rag.Chunker, idx *index.Index, sources core.SourceRepository) *Coordinator {
	return &Coordinator{
		chunker: chunker,
		index:   idx,
		sources: sources,
	}
}

func (c *Coordinator) Ingest(ctx context.Context, adapter core.SourceAdapter) (*core.IngestionReport, error) {
	logger := log.FromCtx(ctx).With().
		Str("component", "ingest").
		Str("source_id", adapter.SourceID()).
		Logger()

	if !adapter.OriginType().Valid() {
		return nil, core.NewConfigError("unknown origin type: %q", adapter.OriginType())
	}

	raw, err := adapter.Produce(ctx)
	if err != nil {
		return nil, fmt.Errorf("adapter failed for source %s: %w", adapter.SourceID(), err)
	}

	chunks, err := c.chunker.Chunk(raw)
	if err != nil {
		return nil, err
	}

	report := &core.IngestionReport{SourceID: raw.SourceID}
	fresh := make(map[string]bool, len(chunks))

	for i := range chunks {
		chunk := &chunks[i]
		fresh[chunk.ID] = true

		present, err := c.index.Has(ctx, chunk.ID)
		if err != nil {
			return nil, core.NewRetrievalError(err, "index lookup failed")
		}
		if present {
			// Identical content reproduces the same id; no re-embedding needed.
			report.Skipped++
			continue
		}

		if err := c.index.Upsert(ctx, chunk); err != nil {
			logger.Warn().Err(err).Str("chunk_id", chunk.ID).Msg("chunk failed, batch continues")
			report.Errors = append(report.Errors, ingestError(chunk.ID, err))
			continue
		}
		report.Written++
	}

	// Reconcile stale chunks of changed content so a re-scraped page does not
	// accumulate outdated windows.
	stored, err := c.index.ChunkIDs(ctx, raw.SourceID)
	if err != nil {
		return nil, core.NewRetrievalError(err, "index listing failed")
	}
	var stale []string
	for _, id := range stored {
		if !fresh[id] {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		pruned, err := c.index.DeleteChunks(ctx, stale)
		if err != nil {
			return nil, core.NewRetrievalError(err, "failed to prune stale chunks")
		}
		report.Pruned = pruned
	}

	if report.Written > 0 || report.Skipped > 0 {
		src := core.Source{
			ID:         raw.SourceID,
			OriginType: raw.OriginType,
			Location:   raw.Location,
			IngestedAt: time.Now().UTC(),
		}
		if err := c.sources.SaveSource(ctx, src); err != nil {
			return nil, fmt.Errorf("failed to record source: %w", err)
		}
	}

	logger.Info().
		Int("written", report.Written).
		Int("skipped", report.Skipped).
		Int("pruned", report.Pruned).
		Int("errors", len(report.Errors)).
		Msg("ingestion finished")

	return report, nil
}

// IngestAll runs independent sources in parallel; reports come back in input
// order. An adapter-level failure becomes a report with a single error so one
// bad source never hides the others.
func (c *Coordinator) IngestAll(ctx context.Context, adapters []core.SourceAdapter) []*core.IngestionReport {
	reports := make([]*core.IngestionReport, len(adapters))

	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter core.SourceAdapter) {
			defer wg.Done()
			report, err := c.Ingest(ctx, adapter)
			if err != nil {
				report = &core.IngestionReport{
					SourceID: adapter.SourceID(),
					Errors:   []core.IngestError{ingestError("", err)},
				}
			}
			reports[i] = report
		}(i, adapter)
	}
	wg.Wait()

	return reports
}

// RemoveSource cascades from the source row to every chunk carrying its id.
func (c *Coordinator) RemoveSource(ctx context.Context, sourceID string) (int, error) {
	removed, err := c.index.DeleteSource(ctx, sourceID)
	if err != nil {
		return 0, err
	}
	if err := c.sources.RemoveSource(ctx, sourceID); err != nil {
		return removed, err
	}
	return removed, nil
}

func ingestError(chunkID string, err error) core.IngestError {
	tag := string(core.TagEmbedding)
	if t, ok := core.TagOf(err); ok {
		tag = string(t)
	}
	return core.IngestError{
		ChunkID: chunkID,
		Tag:     tag,
		Message: err.Error(),
	}
}
