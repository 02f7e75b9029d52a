package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/sandevgo/bizbot/internal/config"
	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/internal/service/host"
	"github.com/sandevgo/bizbot/internal/service/ui"
	"github.com/sandevgo/bizbot/pkg/log"
)

type ReadLine struct {
	cfg       *config.AppConfig
	host      *host.Host
	router    core.CmdRouter
	rl        *readline.Instance
	sessionID string
}

func NewReadLine(h *host.Host, router core.CmdRouter, cfg *config.AppConfig) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.GetRuntimePath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.GetRuntimePath(), "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:       cfg,
		host:      h,
		router:    router,
		rl:        rl,
		sessionID: "cli-" + uuid.NewString(),
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("ReadLine chat started. Type 'exit' to quit.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		if result, handled := r.router.Execute(ctx, r.sessionID, line); handled {
			fmt.Fprintf(r.rl.Stdout(), "%s\n", result)
			continue
		}

		answer, err := r.host.Ask(ctx, host.AskRequest{
			SessionID: r.sessionID,
			Query:     line,
		})
		if err != nil {
			logger.Error().Err(err).Msg("query turn failed")
			fmt.Fprintf(r.rl.Stdout(), "%s\n", core.UserMessage(err))
			continue
		}

		r.render(answer)
	}
}

func (r *ReadLine) render(answer *host.AskResult) {
	out := r.rl.Stdout()
	fmt.Fprintf(out, "%s\n", answer.Answer)

	if answer.NoEvidence {
		fmt.Fprintf(out, "%s\n", ui.DescStyle.Render("(no matching sources)"))
		return
	}
	if len(answer.Citations) > 0 {
		fmt.Fprintf(out, "%s\n", ui.DescStyle.Render(
			fmt.Sprintf("sources: %s · confidence %.2f",
				strings.Join(answer.Citations, ", "), answer.Confidence)))
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
