package llm

import (
	"strings"
	"testing"

	"github.com/sandevgo/bizbot/internal/core"
)

func TestBuildMessagesGrounded(t *testing.T) {
	req := core.ModelRequest{
		Query: "When are you open?",
		Chunks: []core.ContextChunk{
			{CitationID: "S1", Text: "Opening hours: 9 to 5."},
			{CitationID: "S2", Text: "Closed on Sundays."},
		},
		History: []core.HistoryTurn{
			{Query: "Do you deliver?", Answer: "Yes, within three days."},
		},
	}

	msgs := buildMessages(req)
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want system + history pair + query", len(msgs))
	}

	if msgs[0].Role != roleSystem {
		t.Errorf("first message role %q", msgs[0].Role)
	}
	sys := msgs[0].Content
	if !strings.Contains(sys, "[S1] Opening hours: 9 to 5.") {
		t.Errorf("system prompt missing tagged evidence:\n%s", sys)
	}
	if !strings.Contains(sys, "[S2] Closed on Sundays.") {
		t.Errorf("system prompt missing second evidence line:\n%s", sys)
	}
	if strings.Contains(sys, "don't have enough information") {
		t.Error("grounded request got the no-evidence instruction")
	}

	if msgs[1].Role != roleUser || msgs[1].Content != "Do you deliver?" {
		t.Errorf("history query message %+v", msgs[1])
	}
	if msgs[2].Role != roleAssistant || msgs[2].Content != "Yes, within three days." {
		t.Errorf("history answer message %+v", msgs[2])
	}
	if msgs[3].Role != roleUser || msgs[3].Content != req.Query {
		t.Errorf("final message %+v, want the current query", msgs[3])
	}
}

func TestBuildMessagesNoEvidence(t *testing.T) {
	msgs := buildMessages(core.ModelRequest{Query: "Anything?", NoEvidence: true})

	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want system + query", len(msgs))
	}
	if !strings.Contains(msgs[0].Content, "Do not guess") {
		t.Errorf("no-evidence instruction missing:\n%s", msgs[0].Content)
	}
	if strings.Contains(msgs[0].Content, "Context:") {
		t.Error("no-evidence prompt must not carry a context section")
	}
}

func TestBuildMessagesEmptyChunksFallsBack(t *testing.T) {
	// A request without chunks is treated as no-evidence even when the
	// flag was not set explicitly.
	msgs := buildMessages(core.ModelRequest{Query: "Anything?"})
	if !strings.Contains(msgs[0].Content, "don't have enough information") {
		t.Errorf("empty chunk list should select the no-evidence instruction:\n%s", msgs[0].Content)
	}
}
