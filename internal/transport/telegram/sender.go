package telegram

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/bizbot/internal/service/host"
	"github.com/sandevgo/bizbot/pkg/conv"
	"github.com/sandevgo/bizbot/pkg/log"
)

const maxTelegramMsgLen = 4000 // Safety margin below 4096

// sender renders outgoing messages for the chat surface: answers get a
// citation footer, Markdown becomes Telegram HTML, and anything over the
// message limit is split.
type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// sendAnswer delivers a completed turn. Grounded answers carry a footer with
// the cited source ids and the confidence score; no-evidence answers go out
// bare.
func (s *sender) sendAnswer(ctx context.Context, to tele.Recipient, answer *host.AskResult) error {
	return s.sendMarkdown(ctx, to, renderAnswer(answer), false)
}

func renderAnswer(answer *host.AskResult) string {
	if answer.NoEvidence || len(answer.Citations) == 0 {
		return answer.Answer
	}
	return fmt.Sprintf("%s\n\n_Sources: %s · confidence %.2f_",
		answer.Answer, strings.Join(answer.Citations, ", "), answer.Confidence)
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in chunks if needed.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string, silent bool) error {
	logger := log.FromCtx(ctx)
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))

	chunks := splitHTML(html, maxTelegramMsgLen)
	for i, chunk := range chunks {
		opts := []interface{}{tele.ModeHTML}
		if silent && i == 0 {
			opts = append(opts, tele.Silent)
		}

		if _, err := s.bot.Send(to, chunk, opts...); err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

// splitHTML splits text into chunks respecting Telegram's limit.
// It tries to split at newlines to preserve formatting.
func splitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		// Try to find a good break point (newline) in the second half of the chunk
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}
