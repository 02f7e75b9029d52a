package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/internal/providers/source"
	"github.com/sandevgo/bizbot/internal/service/host"
	"github.com/sandevgo/bizbot/pkg/log"
)

const serverInstructions = `Answers business questions grounded in ingested ` +
	`sources. Use "ingest" to index a website or chat export, "query" to ask ` +
	`a question against the index, and "health_check" to probe the pipeline.`

// Options selects how the server is exposed. Stdio serves the process
// stdin/stdout pair; HTTPAddr additionally binds a streamable HTTP endpoint.
type Options struct {
	Stdio    bool
	HTTPAddr string
	Scrape   ScrapeOptions
}

type ScrapeOptions struct {
	MaxPages int
	Timeout  time.Duration
}

// Server exposes the host capabilities as MCP tools.
type Server struct {
	host *host.Host
	mcp  *server.MCPServer
	opts Options

	httpServer *server.StreamableHTTPServer
}

func New(h *host.Host, opts Options) *Server {
	s := &Server{
		host: h,
		opts: opts,
	}

	s.mcp = server.NewMCPServer(
		core.BizName,
		core.BizVersion,
		server.WithRecovery(),
		server.WithInstructions(serverInstructions),
	)

	s.mcp.AddTool(queryTool(), s.handleQuery)
	s.mcp.AddTool(ingestTool(), s.handleIngest)
	s.mcp.AddTool(healthTool(), s.handleHealth)

	return s
}

// MCPServer exposes the underlying server for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	if s.opts.HTTPAddr != "" {
		s.httpServer = server.NewStreamableHTTPServer(s.mcp)
		logger.Info().Str("addr", s.opts.HTTPAddr).Msg("starting MCP HTTP server")
		if !s.opts.Stdio {
			if err := s.httpServer.Start(s.opts.HTTPAddr); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		}
		go func() {
			if err := s.httpServer.Start(s.opts.HTTPAddr); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("MCP HTTP server failed")
			}
		}()
	}

	if s.opts.Stdio {
		logger.Info().Msg("serving MCP over stdio")
		return server.ServeStdio(s.mcp)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func queryTool() mcp.Tool {
	return mcp.NewTool("query",
		mcp.WithDescription("Ask a question answered only from ingested sources. "+
			"Returns the answer with source citations and a confidence score."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithString("session_id",
			mcp.Description("Conversation session; turns in one session share history"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Maximum candidates to retrieve (default from config)"),
		),
		mcp.WithNumber("min_similarity",
			mcp.Description("Similarity floor in [0,1] below which candidates are dropped"),
		),
		mcp.WithNumber("timeout_ms",
			mcp.Description("Model dispatch timeout in milliseconds (default from config)"),
		),
		mcp.WithOutputSchema[host.AskResult](),
	)
}

func (s *Server) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		sessionID = "mcp-default"
	}

	answer, err := s.host.Ask(ctx, host.AskRequest{
		SessionID:     sessionID,
		Query:         query,
		TopK:          req.GetInt("top_k", 0),
		MinSimilarity: req.GetFloat("min_similarity", 0),
		Timeout:       time.Duration(req.GetInt("timeout_ms", 0)) * time.Millisecond,
	})
	if err != nil {
		return mcp.NewToolResultError(core.UserMessage(err)), nil
	}

	return mcp.NewToolResultStructured(answer, answer.Answer), nil
}

func ingestTool() mcp.Tool {
	return mcp.NewTool("ingest",
		mcp.WithDescription("Ingest a source into the index. Idempotent: unchanged "+
			"content is skipped, changed content replaces its stale chunks."),
		mcp.WithString("origin",
			mcp.Required(),
			mcp.Description("Source kind: website or chat_import"),
			mcp.Enum(string(core.OriginWebsite), string(core.OriginChatImport)),
		),
		mcp.WithString("location",
			mcp.Required(),
			mcp.Description("Seed URL for a website, file path for a chat export"),
		),
		mcp.WithString("source_id",
			mcp.Description("Stable source identifier (defaults to the location)"),
		),
		mcp.WithNumber("max_pages",
			mcp.Description("Crawl page limit for websites"),
		),
		mcp.WithOutputSchema[core.IngestionReport](),
	)
}

func (s *Server) handleIngest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	origin, err := req.RequireString("origin")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	location, err := req.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sourceID := req.GetString("source_id", "")

	var adapter core.SourceAdapter
	switch core.OriginType(origin) {
	case core.OriginWebsite:
		adapter = source.NewWebsiteAdapter(sourceID, location, source.WebsiteOptions{
			MaxPages: req.GetInt("max_pages", s.opts.Scrape.MaxPages),
			Timeout:  s.opts.Scrape.Timeout,
		})
	case core.OriginChatImport:
		adapter = source.NewChatExportAdapter(sourceID, location)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown origin type: %q", origin)), nil
	}

	report, err := s.host.IngestSource(ctx, adapter)
	if err != nil {
		return mcp.NewToolResultError(core.UserMessage(err)), nil
	}

	fallback := fmt.Sprintf("source %s: %d written, %d skipped, %d pruned, %d errors",
		report.SourceID, report.Written, report.Skipped, report.Pruned, len(report.Errors))
	return mcp.NewToolResultStructured(report, fallback), nil
}

func healthTool() mcp.Tool {
	return mcp.NewTool("health_check",
		mcp.WithDescription("Probe the retriever, the index and the model client."),
		mcp.WithOutputSchema[core.HealthStatus](),
	)
}

func (s *Server) handleHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := s.host.Health(ctx)

	fallback := "healthy"
	if !status.OK() {
		fallback = fmt.Sprintf("degraded: retriever=%t index=%t model_client=%t",
			status.RetrieverOK, status.IndexOK, status.ModelClientOK)
	}
	return mcp.NewToolResultStructured(status, fallback), nil
}
