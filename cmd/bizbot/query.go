package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandevgo/bizbot/internal/service/host"
)

var (
	queryTopK    int
	queryMinSim  float64
	querySession string
	queryTimeout time.Duration
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask one question and exit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		app := NewApp(ctx)
		defer shutdownApp(ctx, app)

		answer, err := app.Host.Ask(ctx, host.AskRequest{
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

func init() {
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 0, "maximum candidates to retrieve")
	queryCmd.Flags().Float64Var(&queryMinSim, "min-similarity", 0, "similarity floor in [0,1]")
	queryCmd.Flags().StringVar(&querySession, "session", "cli-oneshot", "conversation session id")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 0, "model dispatch timeout (default from config)")
	rootCmd.AddCommand(queryCmd)
}
