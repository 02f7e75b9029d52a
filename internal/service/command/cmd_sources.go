package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/bizbot/internal/core"
)

type SourcesCommand struct {
	sources   core.SourceRepository
	formatter *ResponseFormatter
}

func NewSourcesCommand(sources core.SourceRepository) *SourcesCommand {
	return &SourcesCommand{
		sources:   sources,
		formatter: NewResponseFormatter(),
	}
}

func (c *SourcesCommand) Name() string {
	return "sources"
}

func (c *SourcesCommand) Description() string {
	return "List ingested sources"
}

func (c *SourcesCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	sources, err := c.sources.ListSources(ctx)
	if err != nil {
		return "", err
	}

	if len(sources) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Sources"),
			c.formatter.Label("Status", "No sources ingested yet."),
			c.formatter.Tip("Use /ingest to add a website or chat export"),
		), nil
	}

	items := make([]string, len(sources))
	for i, s := range sources {
		items[i] = fmt.Sprintf("`%s` (%s) %s", s.ID, s.OriginType, s.IngestedAt.Format("2006-01-02"))
	}

	return c.formatter.Combine(
		c.formatter.Info("Sources"),
		c.formatter.List(items),
	), nil
}

type ForgetCommand struct {
	ingestor  Ingestor
	formatter *ResponseFormatter
}

func NewForgetCommand(ingestor Ingestor) *ForgetCommand {
	return &ForgetCommand{
		ingestor:  ingestor,
		formatter: NewResponseFormatter(),
	}
}

func (c *ForgetCommand) Name() string {
	return "forget"
}

func (c *ForgetCommand) Description() string {
	return "Remove a source and all of its chunks"
}

func (c *ForgetCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Forget"),
			c.formatter.Usage("/forget [source-id]"),
			c.formatter.Tip("Find source ids with /sources"),
		), nil
	}

	removed, err := c.ingestor.RemoveSource(ctx, args[0])
	if err != nil {
		return "", err
	}

	return c.formatter.Combine(
		c.formatter.Success(fmt.Sprintf("Removed `%s` (%d chunks)", args[0], removed)),
	), nil
}
