package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/internal/providers/source"
)

var (
	ingestSourceID string
	ingestMaxPages int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [website|chat_import] [location]",
	Short: "Ingest a source and exit",
	Long:  `Crawls a website or parses a chat export, indexes its chunks and prints the ingestion report.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		app := NewApp(ctx)
		defer shutdownApp(ctx, app)

		var adapter core.SourceAdapter
		switch core.OriginType(args[0]) {
		case core.OriginWebsite:
			maxPages := ingestMaxPages
			if maxPages <= 0 {
				maxPages = app.Scrape.MaxPages
			}
			adapter = source.NewWebsiteAdapter(ingestSourceID, args[1], source.WebsiteOptions{
				MaxPages: maxPages,
				Timeout:  app.Scrape.Timeout,
			})
		case core.OriginChatImport:
			adapter = source.NewChatExportAdapter(ingestSourceID, args[1])
		default:
			return fmt.Errorf("unknown origin type: %q (want website or chat_import)", args[0])
		}

		report, err := app.Host.IngestSource(ctx, adapter)
		if err != nil {
			return err
		}

		fmt.Printf("source:  %s\n", report.SourceID)
		fmt.Printf("written: %d\n", report.Written)
		fmt.Printf("skipped: %d\n", report.Skipped)
		if report.Pruned > 0 {
			fmt.Printf("pruned:  %d\n", report.Pruned)
		}
		for _, e := range report.Errors {
			fmt.Printf("error:   %s [%s] %s\n", e.ChunkID, e.Tag, e.Message)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSourceID, "source-id", "", "stable source identifier (defaults to the location)")
	ingestCmd.Flags().IntVar(&ingestMaxPages, "max-pages", 0, "crawl page limit for websites")
	rootCmd.AddCommand(ingestCmd)
}
