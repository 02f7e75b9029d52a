package command

import (
	"github.com/sandevgo/bizbot/internal/core"
)

// HostService is what the command set needs from the orchestration host.
type HostService interface {
	Ingestor
	HealthChecker
}

func NewCommands(
	cfg core.ProviderConfig,
	state core.GlobalState,
	host HostService,
	sources core.SourceRepository,
	scrape ScrapeOptions,
) []core.Command {
	return []core.Command{
		NewModelCommand(cfg, state),
		NewIngestCommand(host, scrape),
		NewSourcesCommand(sources),
		NewForgetCommand(host),
		NewHealthCommand(host),
	}
}
