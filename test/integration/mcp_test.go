package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/internal/providers/rag"
	"github.com/sandevgo/bizbot/internal/service/host"
	"github.com/sandevgo/bizbot/internal/service/index"
	"github.com/sandevgo/bizbot/internal/service/ingest"
	"github.com/sandevgo/bizbot/internal/service/retrieval"
	"github.com/sandevgo/bizbot/internal/storage/memindex"
	"github.com/sandevgo/bizbot/internal/transport/mcpclient"
	"github.com/sandevgo/bizbot/internal/transport/mcpserver"
	"github.com/sandevgo/bizbot/test"
)

type testCfg struct{}

func (testCfg) GetTopK() int              { return 5 }
func (testCfg) GetMinSimilarity() float64 { return 0 }
func (testCfg) GetMaxContextTokens() int  { return 2000 }
func (testCfg) GetMaxHistoryTurns() int   { return 20 }

func newClient(t *testing.T, model core.ModelClient, timeout time.Duration) *mcpclient.Client {
	t.Helper()

	idx := index.New(test.NewFakeEmbedder(8), memindex.New())
	chunker, err := rag.NewChunker(rag.DefaultChunkerConfig())
	require.NoError(t, err)
	coordinator := ingest.NewCoordinator(chunker, idx, memindex.NewSources())

	h := host.New(
		retrieval.NewRetriever(idx), idx, coordinator, model,
		memindex.NewTurns(), testCfg{}, timeout,
	)
	srv := mcpserver.New(h, mcpserver.Options{})

	cli, err := mcpclient.NewInProcessClient(context.Background(), srv.MCPServer())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })
	return cli
}

func writeChatExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.txt")
	export := "12/3/21, 14:05 - Alice: We open at nine every weekday and close at five\n" +
		"12/3/21, 14:06 - Alice: Delivery inside the city takes two working days\n"
	require.NoError(t, os.WriteFile(path, []byte(export), 0644))
	return path
}

func TestIngestQueryHealthLoop(t *testing.T) {
	ctx := context.Background()
	model := &test.FakeModel{Answer: "We open at nine on weekdays [S1]."}
	cli := newClient(t, model, time.Second)

	report, err := cli.Ingest(ctx, mcpclient.IngestParams{
		Origin:   core.OriginChatImport,
		Location: writeChatExport(t),
		SourceID: "support-chat",
	})
	require.NoError(t, err)
	require.Equal(t, "support-chat", report.SourceID)
	require.Positive(t, report.Written)
	require.Empty(t, report.Errors)

	result, err := cli.Query(ctx, mcpclient.QueryParams{
		SessionID: "it",
		Query:     "When do you open?",
	})
	require.NoError(t, err)
	require.False(t, result.NoEvidence)
	require.Equal(t, model.Answer, result.Answer)
	require.Contains(t, result.Citations, "support-chat")
	require.Positive(t, result.Confidence)

	status, err := cli.Health(ctx)
	require.NoError(t, err)
	require.True(t, status.OK())
}

func TestIngestIdempotentOverWire(t *testing.T) {
	ctx := context.Background()
	cli := newClient(t, &test.FakeModel{Answer: "ok"}, time.Second)
	path := writeChatExport(t)

	first, err := cli.Ingest(ctx, mcpclient.IngestParams{
		Origin: core.OriginChatImport, Location: path, SourceID: "chat",
	})
	require.NoError(t, err)

	second, err := cli.Ingest(ctx, mcpclient.IngestParams{
		Origin: core.OriginChatImport, Location: path, SourceID: "chat",
	})
	require.NoError(t, err)
	require.Zero(t, second.Written)
	require.Equal(t, first.Written, second.Skipped)
}

func TestQueryWithoutEvidence(t *testing.T) {
	ctx := context.Background()
	model := &test.FakeModel{Answer: "I don't have information about that."}
	cli := newClient(t, model, time.Second)

	result, err := cli.Query(ctx, mcpclient.QueryParams{Query: "Anything at all?"})
	require.NoError(t, err)
	require.True(t, result.NoEvidence)
	require.Zero(t, result.Confidence)
	require.Empty(t, result.Citations)
}

func TestQueryCallerTimeoutOverWire(t *testing.T) {
	// Server default of 3s; the caller asks for 50ms and must not wait out
	// the default against a model that never answers.
	cli := newClient(t, test.HangingModel{}, 3*time.Second)

	start := time.Now()
	_, err := cli.Query(context.Background(), mcpclient.QueryParams{
		SessionID: "it",
		Query:     "Will this ever return?",
		Timeout:   50 * time.Millisecond,
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	require.Contains(t, err.Error(), "timeout")
	require.Less(t, elapsed, time.Second)
}

func TestQueryRejectsEmptyInput(t *testing.T) {
	cli := newClient(t, &test.FakeModel{Answer: "unused"}, time.Second)

	_, err := cli.Query(context.Background(), mcpclient.QueryParams{Query: "   "})
	require.Error(t, err)
	require.Contains(t, err.Error(), "query")
}

func TestIngestRejectsUnknownOrigin(t *testing.T) {
	cli := newClient(t, &test.FakeModel{Answer: "unused"}, time.Second)

	_, err := cli.Ingest(context.Background(), mcpclient.IngestParams{
		Origin:   core.OriginType("carrier_pigeon"),
		Location: "somewhere",
	})
	require.Error(t, err)
}
