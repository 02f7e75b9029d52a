package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/internal/transport/mcpclient"
)

var (
	clientHTTP  string
	clientStdio []string
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Call a running BizBot MCP server",
	Long:  `Connects to a BizBot capability server over streamable HTTP or a stdio subprocess and invokes its tools.`,
}

func newClient(ctx context.Context) (*mcpclient.Client, error) {
	if clientHTTP != "" {
		return mcpclient.NewHTTPClient(ctx, clientHTTP)
	}
	if len(clientStdio) > 0 {
		return mcpclient.NewStdioClient(ctx, clientStdio[0], clientStdio[1:]...)
	}
	return nil, fmt.Errorf("no server selected: pass --http or --stdio")
}

var clientQueryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask the remote server a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		cli, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer cli.Close()

		answer, err := cli.Query(ctx, mcpclient.QueryParams{
			SessionID:     querySession,
			Query:         args[0],
			TopK:          queryTopK,
			MinSimilarity: queryMinSim,
			Timeout:       queryTimeout,
		})
		if err != nil {
			return err
		}

		fmt.Println(answer.Answer)
		if !answer.NoEvidence && len(answer.Citations) > 0 {
			fmt.Printf("\nsources: %s (confidence %.2f)\n",
				strings.Join(answer.Citations, ", "), answer.Confidence)
		}
		return nil
	},
}

var clientIngestCmd = &cobra.Command{
	Use:   "ingest [website|chat_import] [location]",
	Short: "Ingest a source on the remote server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		cli, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer cli.Close()

		report, err := cli.Ingest(ctx, mcpclient.IngestParams{
			Origin:   core.OriginType(args[0]),
			Location: args[1],
			SourceID: ingestSourceID,
			MaxPages: ingestMaxPages,
		})
		if err != nil {
			return err
		}

		fmt.Printf("source %s: %d written, %d skipped, %d pruned, %d errors\n",
			report.SourceID, report.Written, report.Skipped, report.Pruned, len(report.Errors))
		return nil
	},
}

var clientHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the remote server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		cli, err := newClient(ctx)
		if err != nil {
			return err
		}
		defer cli.Close()

		status, err := cli.Health(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("retriever=%t index=%t model_client=%t\n",
			status.RetrieverOK, status.IndexOK, status.ModelClientOK)
		if !status.OK() {
			return fmt.Errorf("degraded")
		}
		return nil
	},
}

func init() {
	clientCmd.PersistentFlags().StringVar(&clientHTTP, "http", "", "streamable HTTP server URL")
	clientCmd.PersistentFlags().StringSliceVar(&clientStdio, "stdio", nil, "stdio server command and args")

	clientQueryCmd.Flags().IntVar(&queryTopK, "top-k", 0, "maximum candidates to retrieve")
	clientQueryCmd.Flags().Float64Var(&queryMinSim, "min-similarity", 0, "similarity floor in [0,1]")
	clientQueryCmd.Flags().StringVar(&querySession, "session", "mcp-cli", "conversation session id")
	clientQueryCmd.Flags().DurationVar(&queryTimeout, "timeout", 0, "model dispatch timeout (default from config)")

	clientIngestCmd.Flags().StringVar(&ingestSourceID, "source-id", "", "stable source identifier")
	clientIngestCmd.Flags().IntVar(&ingestMaxPages, "max-pages", 0, "crawl page limit for websites")

	clientCmd.AddCommand(clientQueryCmd, clientIngestCmd, clientHealthCmd)
	rootCmd.AddCommand(clientCmd)
}
