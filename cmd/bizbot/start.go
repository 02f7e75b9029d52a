package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sandevgo/bizbot/pkg/log"
	"github.com/sandevgo/bizbot/pkg/srv"
)

var mcpStdio bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the BizBot services",
	Long:  `Initializes and starts all configured surfaces (CLI, Telegram, MCP).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup; stdio MCP owns stdout, so logs move to stderr
		var flushLog func()
		if mcpStdio {
			ctx, flushLog = setupLoggerTo(ctx, os.Stderr)
		} else {
			ctx, flushLog = setupLogger(ctx)
		}
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting bizbot")

		app := NewApp(ctx)
		services := NewServices(ctx, app, mcpStdio)

		// Start services
		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("bizbot has been shut down gracefully")

		return nil
	},
}

func init() {
	startCmd.Flags().BoolVar(&mcpStdio, "mcp-stdio", false, "serve the MCP tools over stdin/stdout instead of the interactive CLI")
	rootCmd.AddCommand(startCmd)
}
