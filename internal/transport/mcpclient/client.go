package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/client"
	mcptransport "github.com/mark3labs/mcp-go/client/transport"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/internal/service/host"
)

// Client talks to a running capability server over any MCP transport and
// exposes the three tools as typed calls.
type Client struct {
	cli *client.Client
}

func NewStdioClient(ctx context.Context, command string, args ...string) (*Client, error) {
	cli, err := client.NewStdioMCPClient(command, nil, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return initialize(ctx, cli)
}

func NewHTTPClient(ctx context.Context, url string) (*Client, error) {
	// Fresh transport to avoid shared state issues
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	cli, err := client.NewStreamableHttpClient(
		url,
		mcptransport.WithHTTPBasicClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP transport: %w", err)
	}
	return initialize(ctx, cli)
}

// NewInProcessClient wires directly into a server living in the same process.
func NewInProcessClient(ctx context.Context, srv *server.MCPServer) (*Client, error) {
	cli, err := client.NewInProcessClient(srv)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-process client: %w", err)
	}
	return initialize(ctx, cli)
}

func initialize(ctx context.Context, cli *client.Client) (*Client, error) {
	if err := cli.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start client: %w", err)
	}

	req := mcpproto.InitializeRequest{}
	req.Params.ProtocolVersion = mcpproto.LATEST_PROTOCOL_VERSION
	req.Params.Capabilities = mcpproto.ClientCapabilities{}
	req.Params.ClientInfo = mcpproto.Implementation{
		Name:    core.BizName,
		Version: core.BizVersion,
	}

	if _, err := cli.Initialize(ctx, req); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}

	return &Client{cli: cli}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

type QueryParams struct {
	SessionID     string
	Query         string
	TopK          int
	MinSimilarity float64
	// Timeout bounds the model dispatch on the server side; zero keeps the
	// server default.
	Timeout time.Duration
}

func (c *Client) Query(ctx context.Context, params QueryParams) (*host.AskResult, error) {
	args := map[string]any{"query": params.Query}
	if params.SessionID != "" {
		args["session_id"] = params.SessionID
	}
	if params.TopK > 0 {
		args["top_k"] = params.TopK
	}
	if params.MinSimilarity > 0 {
		args["min_similarity"] = params.MinSimilarity
	}
	if params.Timeout > 0 {
		args["timeout_ms"] = int(params.Timeout / time.Millisecond)
	}

	var result host.AskResult
	if err := c.call(ctx, "query", args, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type IngestParams struct {
	Origin   core.OriginType
	Location string
	SourceID string
	MaxPages int
}

func (c *Client) Ingest(ctx context.Context, params IngestParams) (*core.IngestionReport, error) {
	args := map[string]any{
		"origin":   string(params.Origin),
		"location": params.Location,
	}
	if params.SourceID != "" {
		args["source_id"] = params.SourceID
	}
	if params.MaxPages > 0 {
		args["max_pages"] = params.MaxPages
	}

	var report core.IngestionReport
	if err := c.call(ctx, "ingest", args, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) Health(ctx context.Context) (*core.HealthStatus, error) {
	var status core.HealthStatus
	if err := c.call(ctx, "health_check", map[string]any{}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// call invokes one tool and decodes its structured content into out.
func (c *Client) call(ctx context.Context, tool string, args map[string]any, out any) error {
	req := mcpproto.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args

	result, err := c.cli.CallTool(ctx, req)
	if err != nil {
		return fmt.Errorf("tool %s failed: %w", tool, err)
	}
	if result.IsError {
		return fmt.Errorf("tool %s: %s", tool, flattenText(result))
	}

	raw, err := json.Marshal(result.StructuredContent)
	if err != nil {
		return fmt.Errorf("tool %s returned undecodable content: %w", tool, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("tool %s returned unexpected content: %w", tool, err)
	}
	return nil
}

func flattenText(result *mcpproto.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(mcpproto.TextContent); ok {
			return text.Text
		}
	}
	return "unknown error"
}
