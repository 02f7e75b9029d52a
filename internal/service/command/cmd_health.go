package command

import (
	"context"

	"github.com/sandevgo/bizbot/internal/core"
)

// HealthChecker is the slice of the host the health command needs.
type HealthChecker interface {
	Health(ctx context.Context) core.HealthStatus
}

type HealthCommand struct {
	checker   HealthChecker
	formatter *ResponseFormatter
}

func NewHealthCommand(checker HealthChecker) *HealthCommand {
	return &HealthCommand{
		checker:   checker,
		formatter: NewResponseFormatter(),
	}
}

func (c *HealthCommand) Name() string {
	return "health"
}

func (c *HealthCommand) Description() string {
	return "Check retriever, index and model client health"
}

func (c *HealthCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	status := c.checker.Health(ctx)

	return c.formatter.Combine(
		c.formatter.Info("Health"),
		c.formatter.Status("Retriever", status.RetrieverOK)+
			c.formatter.Status("Index", status.IndexOK)+
			c.formatter.Status("Model client", status.ModelClientOK),
	), nil
}
