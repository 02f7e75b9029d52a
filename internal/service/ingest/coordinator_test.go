package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/internal/providers/rag"
	"github.com/sandevgo/bizbot/internal/service/index"
	"github.com/sandevgo/bizbot/internal/storage/memindex"
	"github.com/sandevgo/bizbot/test"
)

type stubAdapter struct {
	id     string
	origin core.OriginType
	text   string
	err    error
}

func (a *stubAdapter) SourceID() string            { return a.id }
func (a *stubAdapter) OriginType() core.OriginType { return a.origin }

func (a *stubAdapter) Produce(ctx context.Context) (*core.RawSource, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &core.RawSource{
		SourceID:   a.id,
		OriginType: a.origin,
		Location:   "stub://" + a.id,
		Text:       a.text,
	}, nil
}

func newPipeline(t *testing.T, embedder core.Embedder) (*Coordinator, *index.Index, *memindex.Sources) {
	t.Helper()
	// ChunkTokens 3 splits sentence-per-chunk: "First sentence." is 3 tokens.
	chunker, err := rag.NewChunker(rag.ChunkerConfig{ChunkTokens: 3, OverlapTokens: 0})
	if err != nil {
		t.Fatal(err)
	}
	idx := index.New(embedder, memindex.New())
	sources := memindex.NewSources()
	return NewCoordinator(chunker, idx, sources), idx, sources
}

func TestIngestWritesAndRecordsSource(t *testing.T) {
	ctx := context.Background()
	c, idx, sources := newPipeline(t, test.NewFakeEmbedder(4))

	report, err := c.Ingest(ctx, &stubAdapter{id: "site", origin: core.OriginWebsite, text: "First sentence. Second sentence."})
	if err != nil {
		t.Fatal(err)
	}

	if report.Written != 2 || report.Skipped != 0 || len(report.Errors) != 0 {
		t.Errorf("report %+v, want 2 written", report)
	}

	count, _ := idx.Count(ctx)
	if count != 2 {
		t.Errorf("index holds %d chunks, want 2", count)
	}
	if _, err := sources.GetSource(ctx, "site"); err != nil {
		t.Errorf("source row not recorded: %v", err)
	}
}

func TestIngestIdempotent(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newPipeline(t, test.NewFakeEmbedder(4))
	adapter := &stubAdapter{id: "site", origin: core.OriginWebsite, text: "First sentence. Second sentence."}

	if _, err := c.Ingest(ctx, adapter); err != nil {
		t.Fatal(err)
	}
	report, err := c.Ingest(ctx, adapter)
	if err != nil {
		t.Fatal(err)
	}

	if report.Written != 0 || report.Skipped != 2 || report.Pruned != 0 {
		t.Errorf("re-ingestion report %+v, want all skipped", report)
	}
}

func TestIngestPrunesStaleChunks(t *testing.T) {
	ctx := context.Background()
	c, idx, _ := newPipeline(t, test.NewFakeEmbedder(4))

	if _, err := c.Ingest(ctx, &stubAdapter{id: "site", origin: core.OriginWebsite, text: "First sentence. Second sentence."}); err != nil {
		t.Fatal(err)
	}

	// The first sentence survives, the second changed.
	report, err := c.Ingest(ctx, &stubAdapter{id: "site", origin: core.OriginWebsite, text: "First sentence. Another sentence."})
	if err != nil {
		t.Fatal(err)
	}

	if report.Written != 1 || report.Skipped != 1 || report.Pruned != 1 {
		t.Errorf("report %+v, want 1 written, 1 skipped, 1 pruned", report)
	}
	count, _ := idx.Count(ctx)
	if count != 2 {
		t.Errorf("index holds %d chunks, want 2 after reconciliation", count)
	}
}

func TestIngestPartialFailureContinues(t *testing.T) {
	ctx := context.Background()
	embedder := test.NewFakeEmbedder(4)
	embedder.FailOn["Second sentence."] = true
	c, idx, sources := newPipeline(t, embedder)

	report, err := c.Ingest(ctx, &stubAdapter{id: "site", origin: core.OriginWebsite, text: "First sentence. Second sentence."})
	if err != nil {
		t.Fatal(err)
	}

	if report.Written != 1 {
		t.Errorf("written %d, want 1", report.Written)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("errors %v, want exactly one", report.Errors)
	}
	if report.Errors[0].Tag != string(core.TagEmbedding) {
		t.Errorf("error tag %s, want %s", report.Errors[0].Tag, core.TagEmbedding)
	}

	count, _ := idx.Count(ctx)
	if count != 1 {
		t.Errorf("index holds %d chunks, want the surviving one", count)
	}
	if _, err := sources.GetSource(ctx, "site"); err != nil {
		t.Errorf("partial success should still record the source: %v", err)
	}
}

func TestIngestAdapterFailure(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newPipeline(t, test.NewFakeEmbedder(4))

	_, err := c.Ingest(ctx, &stubAdapter{id: "site", origin: core.OriginWebsite, err: errors.New("unreachable")})
	if err == nil {
		t.Fatal("want error from failing adapter")
	}
}

func TestIngestRejectsUnknownOrigin(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newPipeline(t, test.NewFakeEmbedder(4))

	_, err := c.Ingest(ctx, &stubAdapter{id: "x", origin: core.OriginType("carrier_pigeon"), text: "hi"})
	if !core.IsTag(err, core.TagConfig) {
		t.Errorf("want config_error, got %v", err)
	}
}

func TestIngestAllIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newPipeline(t, test.NewFakeEmbedder(4))

	reports := c.IngestAll(ctx, []core.SourceAdapter{
		&stubAdapter{id: "ok", origin: core.OriginWebsite, text: "First sentence."},
		&stubAdapter{id: "bad", origin: core.OriginWebsite, err: errors.New("unreachable")},
	})

	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if reports[0].SourceID != "ok" || reports[0].Written != 1 {
		t.Errorf("first report %+v, want 1 written for ok", reports[0])
	}
	if reports[1].SourceID != "bad" || len(reports[1].Errors) != 1 {
		t.Errorf("second report %+v, want a single adapter error", reports[1])
	}
}

func TestRemoveSourceCascades(t *testing.T) {
	ctx := context.Background()
	c, idx, sources := newPipeline(t, test.NewFakeEmbedder(4))

	if _, err := c.Ingest(ctx, &stubAdapter{id: "site", origin: core.OriginWebsite, text: "First sentence. Second sentence."}); err != nil {
		t.Fatal(err)
	}

	removed, err := c.RemoveSource(ctx, "site")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("removed %d chunks, want 2", removed)
	}

	count, _ := idx.Count(ctx)
	if count != 0 {
		t.Errorf("index holds %d chunks, want 0", count)
	}
	if _, err := sources.GetSource(ctx, "site"); err == nil {
		t.Error("source row should be gone")
	}
}
