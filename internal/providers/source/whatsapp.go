package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/pkg/log"
)

// messagePattern matches the head line of a WhatsApp export message:
// "[12/31/21, 9:30 PM] Alice: text" or "12/31/21, 21:30 - Alice: text".
var messagePattern = regexp.MustCompile(
	`^\[?(\d{1,2}/\d{1,2}/\d{2,4},?\s*\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AaPp][Mm])?)\]?\s*(?:-\s*)?([^:]+):\s(.+)$`,
)

// Export timestamps vary by locale and platform; day-first layouts are tried
// before month-first.
var timestampLayouts = []string{
	"2/1/06, 15:04",
	"2/1/2006, 15:04",
	"1/2/06, 15:04",
	"1/2/2006, 15:04",
	"2/1/06, 3:04 PM",
	"2/1/2006, 3:04 PM",
	"1/2/06, 3:04 PM",
	"1/2/2006, 3:04 PM",
	"2/1/06, 15:04:05",
	"2/1/2006, 15:04:05",
	"1/2/06, 3:04:05 PM",
	"1/2/2006, 3:04:05 PM",
}

var systemNotices = []string{
	"Messages and calls are end-to-end encrypted",
	"<Media omitted>",
	"image omitted",
	"This message was deleted",
}

const minMessageWords = 3

// ChatExportAdapter reads a WhatsApp chat export file and produces per-message
// records with sender and timestamp metadata.
type ChatExportAdapter struct {
	sourceID string
	path     string
}

func NewChatExportAdapter(sourceID, path string) *ChatExportAdapter {
	if sourceID == "" {
		sourceID = path
	}
	return &ChatExportAdapter{sourceID: sourceID, path: path}
}

func (c *ChatExportAdapter) SourceID() string            { return c.sourceID }
func (c *ChatExportAdapter) OriginType() core.OriginType { return core.OriginChatImport }

func (c *ChatExportAdapter) Produce(ctx context.Context) (*core.RawSource, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat export: %w", err)
	}
	defer f.Close()

	messages, err := parseExport(f)
	if err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Info().
		Str("path", c.path).
		Int("messages", len(messages)).
		Msg("imported chat export")

	return &core.RawSource{
		SourceID:   c.sourceID,
		OriginType: core.OriginChatImport,
		Location:   c.path,
		Messages:   messages,
	}, nil
}

// parseExport folds continuation lines into the preceding message and drops
// system notices and messages too short to carry meaning.
func parseExport(r io.Reader) ([]core.ChatMessage, error) {
	var messages []core.ChatMessage
	var current *core.ChatMessage

	flush := func() {
		if current == nil {
			return
		}
		if keepMessage(current.Text) {
			messages = append(messages, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		m := messagePattern.FindStringSubmatch(line)
		if m == nil {
			// Continuation of the previous message.
			if current != nil {
				current.Text += "\n" + line
			}
			continue
		}

		flush()

		ts, err := parseTimestamp(m[1])
		if err != nil {
			// Unparseable head line; skip the whole message.
			continue
		}

		current = &core.ChatMessage{
			Sender:    strings.TrimSpace(m[2]),
			Timestamp: &ts,
			Text:      strings.TrimSpace(m[3]),
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chat export: %w", err)
	}
	flush()

	return messages, nil
}

func keepMessage(text string) bool {
	for _, notice := range systemNotices {
		if strings.Contains(text, notice) {
			return false
		}
	}
	return len(strings.Fields(text)) >= minMessageWords
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.Join(strings.Fields(raw), " ")
	if !strings.Contains(raw, ",") {
		// Some exports drop the comma between date and time.
		if i := strings.Index(raw, " "); i > 0 {
			raw = raw[:i] + "," + raw[i:]
		}
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", raw)
}
