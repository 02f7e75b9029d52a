package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sandevgo/bizbot/internal/core"
)

func TestParseExportFormats(t *testing.T) {
	tests := []struct {
		name       string
		export     string
		wantCount  int
		wantSender string
		wantText   string
	}{
		{
			name:       "android dash format",
			export:     "12/3/21, 14:05 - Alice: We open at nine every weekday\n",
			wantCount:  1,
			wantSender: "Alice",
			wantText:   "We open at nine every weekday",
		},
		{
			name:       "ios bracket format",
			export:     "[12/3/21, 2:05 PM] Bob: Delivery takes three days usually\n",
			wantCount:  1,
			wantSender: "Bob",
			wantText:   "Delivery takes three days usually",
		},
		{
			name:       "seconds in timestamp",
			export:     "[12/3/2021, 2:05:33 PM] Bob: Delivery takes three days usually\n",
			wantCount:  1,
			wantSender: "Bob",
			wantText:   "Delivery takes three days usually",
		},
		{
			name: "continuation lines fold into the message",
			export: "12/3/21, 14:05 - Alice: The pricing works like this\n" +
				"basic plan is ten euros\n" +
				"premium is twenty\n",
			wantCount:  1,
			wantSender: "Alice",
			wantText:   "The pricing works like this\nbasic plan is ten euros\npremium is twenty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExport(strings.NewReader(tt.export))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.wantCount {
				t.Fatalf("parsed %d messages, want %d", len(got), tt.wantCount)
			}
			if got[0].Sender != tt.wantSender {
				t.Errorf("sender %q, want %q", got[0].Sender, tt.wantSender)
			}
			if got[0].Text != tt.wantText {
				t.Errorf("text %q, want %q", got[0].Text, tt.wantText)
			}
			if got[0].Timestamp == nil {
				t.Error("timestamp missing")
			}
		})
	}
}

func TestParseExportDrops(t *testing.T) {
	export := strings.Join([]string{
		"12/3/21, 14:00 - Alice: Messages and calls are end-to-end encrypted. No one outside of this chat can read them.",
		"12/3/21, 14:01 - Alice: <Media omitted>",
		"12/3/21, 14:02 - Bob: ok",
		"12/3/21, 14:03 - Bob: This message was deleted",
		"12/3/21, 14:04 - Alice: We close on public holidays",
	}, "\n")

	got, err := parseExport(strings.NewReader(export))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("parsed %d messages, want only the meaningful one", len(got))
	}
	if got[0].Text != "We close on public holidays" {
		t.Errorf("kept %q", got[0].Text)
	}
}

func TestParseExportOrphanContinuation(t *testing.T) {
	// A continuation before any head line has nothing to attach to.
	got, err := parseExport(strings.NewReader("just a stray line\nanother stray line\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("parsed %d messages, want none", len(got))
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw     string
		wantDay int
	}{
		{"12/3/21, 14:05", 12},      // day-first wins
		{"12/3/21 14:05", 12},       // missing comma normalized
		{"12/3/21, 2:05 PM", 12},
		// Seconds with PM only exist as month-first layouts.
		{"3/12/2021, 2:05:33 PM", 12},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ts, err := parseTimestamp(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			if ts.Day() != tt.wantDay {
				t.Errorf("day %d, want %d", ts.Day(), tt.wantDay)
			}
		})
	}

	if _, err := parseTimestamp("not a timestamp"); err == nil {
		t.Error("garbage timestamp must not parse")
	}
}

func TestChatExportAdapterProduce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat.txt")
	export := "12/3/21, 14:05 - Alice: We open at nine every weekday\n"
	if err := os.WriteFile(path, []byte(export), 0644); err != nil {
		t.Fatal(err)
	}

	adapter := NewChatExportAdapter("support-chat", path)
	if adapter.OriginType() != core.OriginChatImport {
		t.Errorf("origin %s", adapter.OriginType())
	}

	raw, err := adapter.Produce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if raw.SourceID != "support-chat" || raw.Location != path {
		t.Errorf("raw source %+v", raw)
	}
	if len(raw.Messages) != 1 {
		t.Fatalf("got %d messages", len(raw.Messages))
	}
}

func TestChatExportAdapterDefaultsSourceID(t *testing.T) {
	adapter := NewChatExportAdapter("", "/data/chat.txt")
	if adapter.SourceID() != "/data/chat.txt" {
		t.Errorf("source id %q, want the path", adapter.SourceID())
	}
}

func TestChatExportAdapterMissingFile(t *testing.T) {
	adapter := NewChatExportAdapter("x", filepath.Join(t.TempDir(), "absent.txt"))
	if _, err := adapter.Produce(context.Background()); err == nil {
		t.Error("missing file must error")
	}
}
