package telegram

import (
	"strings"
	"testing"

	"github.com/sandevgo/bizbot/internal/service/host"
)

func TestRenderAnswerGrounded(t *testing.T) {
	got := renderAnswer(&host.AskResult{
		Answer:     "We open at nine on weekdays [S1].",
		Citations:  []string{"site", "support-chat"},
		Confidence: 0.87,
	})

	if !strings.HasPrefix(got, "We open at nine on weekdays [S1].") {
		t.Errorf("answer body lost: %q", got)
	}
	if !strings.Contains(got, "_Sources: site, support-chat") {
		t.Errorf("missing citation footer: %q", got)
	}
	if !strings.Contains(got, "confidence 0.87") {
		t.Errorf("missing confidence: %q", got)
	}
}

func TestRenderAnswerNoEvidence(t *testing.T) {
	got := renderAnswer(&host.AskResult{
		Answer:     "I don't have information about that.",
		NoEvidence: true,
	})

	if got != "I don't have information about that." {
		t.Errorf("no-evidence answer must go out bare, got %q", got)
	}
}

func TestSplitHTMLPrefersNewlines(t *testing.T) {
	text := strings.Repeat("line one\n", 20)
	chunks := splitHTML(strings.TrimSpace(text), 100)

	if len(chunks) < 2 {
		t.Fatalf("expected a split, got %d chunk(s)", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk %d exceeds limit: %d bytes", i, len(c))
		}
		if strings.HasPrefix(c, "\n") || strings.HasSuffix(c, "\n") {
			t.Errorf("chunk %d carries a dangling newline: %q", i, c)
		}
	}
	if joined := strings.Join(chunks, "\n"); !strings.Contains(joined, "line one") {
		t.Errorf("content lost in split: %q", joined)
	}
}

func TestSplitHTMLShortTextUntouched(t *testing.T) {
	chunks := splitHTML("short", 100)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Errorf("short text must pass through, got %v", chunks)
	}
}
