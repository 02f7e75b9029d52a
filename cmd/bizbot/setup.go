package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/bizbot/internal/config"
	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/internal/providers/embed"
	"github.com/sandevgo/bizbot/internal/providers/llm"
	"github.com/sandevgo/bizbot/internal/providers/rag"
	"github.com/sandevgo/bizbot/internal/service/command"
	"github.com/sandevgo/bizbot/internal/service/host"
	"github.com/sandevgo/bizbot/internal/service/index"
	"github.com/sandevgo/bizbot/internal/service/ingest"
	"github.com/sandevgo/bizbot/internal/service/retrieval"
	"github.com/sandevgo/bizbot/internal/service/state"
	"github.com/sandevgo/bizbot/internal/storage/memindex"
	"github.com/sandevgo/bizbot/internal/storage/sqlite"
	"github.com/sandevgo/bizbot/internal/transport/cli"
	"github.com/sandevgo/bizbot/internal/transport/mcpserver"
	"github.com/sandevgo/bizbot/internal/transport/telegram"
	"github.com/sandevgo/bizbot/pkg/log"
	"github.com/sandevgo/bizbot/pkg/srv"
)

// App holds the wired capability pipeline shared by the long-running start
// command and the one-shot ingest/query commands.
type App struct {
	AppCfg   *config.AppConfig
	ModelCfg *config.ModelConfig
	RAGCfg   *config.RAGConfig
	Scrape   *config.ScrapeConfig

	Host    *host.Host
	Router  core.CmdRouter
	Sources core.SourceRepository

	cleanups []srv.Service
}

func NewApp(ctx context.Context) *App {
	logger := log.FromCtx(ctx)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	modelCfg := config.NewModelConfig(ctx)
	embedCfg := config.NewEmbedConfig(ctx)
	ragCfg := config.NewRAGConfig(ctx)
	scrapeCfg := config.NewScrapeConfig(ctx)

	app := &App{
		AppCfg:   appCfg,
		ModelCfg: modelCfg,
		RAGCfg:   ragCfg,
		Scrape:   scrapeCfg,
	}

	// 2. Storage
	store, sources, turns, err := app.initStorage(ctx, appCfg, embedCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	app.Sources = sources

	// 3. Embedder + Index
	embedder, err := embed.NewEmbedder(ctx, embedCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}
	idx := index.New(embedder, store)

	// 4. Ingestion pipeline
	chunker, err := rag.NewChunker(rag.ChunkerConfig{
		ChunkTokens:   ragCfg.ChunkTokens,
		OverlapTokens: ragCfg.ChunkOverlap,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize chunker")
	}
	coordinator := ingest.NewCoordinator(chunker, idx, sources)

	// 5. Model provider, swappable at runtime via /model
	provider, err := llm.NewDynamicProvider(ctx, modelCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize model provider")
	}

	// 6. Query pipeline
	retriever := retrieval.NewRetriever(idx)
	app.Host = host.New(retriever, idx, coordinator, provider, turns, ragCfg, modelCfg.GetModelTimeout())

	// 7. Commands
	globalState := state.NewGlobalState(provider)
	app.Router = command.New(command.NewCommands(
		modelCfg,
		globalState,
		app.Host,
		sources,
		command.ScrapeOptions{MaxPages: scrapeCfg.MaxPages, Timeout: scrapeCfg.Timeout},
	))

	return app
}

func (a *App) initStorage(
	ctx context.Context,
	appCfg *config.AppConfig,
	embedCfg *config.EmbedConfig,
) (core.VectorIndex, core.SourceRepository, core.TurnRepository, error) {
	switch appCfg.GetIndexDriver() {
	case "memory":
		return memindex.New(), memindex.NewSources(), memindex.NewTurns(), nil
	case "sqlite":
		db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath(), embedCfg.GetEmbedDims())
		if err != nil {
			return nil, nil, nil, err
		}
		a.cleanups = append(a.cleanups, srv.NewCleanup(db.Close))
		return sqlite.NewChunkStore(db), sqlite.NewSourcesRepo(db), sqlite.NewTurnsRepo(db), nil
	default:
		return nil, nil, nil, core.NewConfigError("unknown index driver: %q", appCfg.GetIndexDriver())
	}
}

// NewServices wires the transports selected by configuration on top of the
// shared pipeline. mcpStdio replaces the interactive CLI: both want the
// process stdin/stdout pair.
func NewServices(ctx context.Context, app *App, mcpStdio bool) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)
	services = append(services, app.cleanups...)

	if app.AppCfg.IsTelegramEnabled() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, app.Host, app.Router)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		services = append(services, bot)
	}

	if mcpStdio || app.AppCfg.GetMCPHTTPAddr() != "" {
		services = append(services, mcpserver.New(app.Host, mcpserver.Options{
			Stdio:    mcpStdio,
			HTTPAddr: app.AppCfg.GetMCPHTTPAddr(),
			Scrape: mcpserver.ScrapeOptions{
				MaxPages: app.Scrape.MaxPages,
				Timeout:  app.Scrape.Timeout,
			},
		}))
	}

	if app.AppCfg.IsCLIEnabled() && !mcpStdio {
		repl, err := cli.NewReadLine(app.Host, app.Router, app.AppCfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize CLI")
		}
		services = append(services, repl)
	}

	return services
}

// shutdownApp closes the pipeline's resources for one-shot commands that
// never go through StartServices.
func shutdownApp(ctx context.Context, app *App) {
	for _, c := range app.cleanups {
		if err := c.Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("cleanup failed")
		}
	}
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
