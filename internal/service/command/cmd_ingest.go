package command

import (
	"context"
	"strings"
	"time"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/internal/providers/source"
)

// Ingestor is the slice of the host the ingest commands need.
type Ingestor interface {
	IngestSource(ctx context.Context, adapter core.SourceAdapter) (*core.IngestionReport, error)
	RemoveSource(ctx context.Context, sourceID string) (int, error)
}

// ScrapeOptions bounds the website crawler started from a chat surface.
type ScrapeOptions struct {
	MaxPages int
	Timeout  time.Duration
}

type IngestCommand struct {
	ingestor  Ingestor
	scrape    ScrapeOptions
	formatter *ResponseFormatter
}

func NewIngestCommand(ingestor Ingestor, scrape ScrapeOptions) *IngestCommand {
	return &IngestCommand{
		ingestor:  ingestor,
		scrape:    scrape,
		formatter: NewResponseFormatter(),
	}
}

func (c *IngestCommand) Name() string {
	return "ingest"
}

func (c *IngestCommand) Description() string {
	return "Ingest a website or chat export into the index"
}

func (c *IngestCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) < 2 {
		return c.usage(), nil
	}

	var adapter core.SourceAdapter
	location := args[1]
	sourceID := ""
	if len(args) > 2 {
		sourceID = args[2]
	}

	switch strings.ToLower(args[0]) {
	case string(core.OriginWebsite), "site", "url":
		adapter = source.NewWebsiteAdapter(sourceID, location, source.WebsiteOptions{
			MaxPages: c.scrape.MaxPages,
			Timeout:  c.scrape.Timeout,
		})
	case string(core.OriginChatImport), "chat", "whatsapp":
		adapter = source.NewChatExportAdapter(sourceID, location)
	default:
		return c.usage(), nil
	}

	report, err := c.ingestor.IngestSource(ctx, adapter)
	if err != nil {
		return "", err
	}

	return c.formatter.Combine(
		c.formatter.Info("Ingestion"),
		c.formatter.Report(report),
	), nil
}

func (c *IngestCommand) usage() string {
	return c.formatter.Combine(
		c.formatter.Info("Ingest"),
		c.formatter.Usage("/ingest [website|chat] [location] [source-id]"),
		c.formatter.Examples([]string{
			"/ingest website https://example.com",
			"/ingest chat /data/exports/support.txt support-chat",
		}),
	)
}
