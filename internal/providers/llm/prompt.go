package llm

import (
	"fmt"
	"strings"

	"github.com/sandevgo/bizbot/internal/core"
)

const groundedInstruction = `You are a helpful assistant that answers only using verified data from the provided business dataset.
Each piece of evidence is tagged with a citation id like [S1]. Base every statement on the evidence and mention nothing the evidence does not support.
Respond with factual, concise information in conversational form.`

const noEvidenceInstruction = `You are a helpful assistant answering questions about a business.
No grounding evidence was found in the dataset for this question. Say that you don't have enough information to answer and suggest ingesting some business data first. Do not guess.`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"
)

// buildMessages renders a model request into the chat form shared by every
// OpenAI-shaped provider. The gemini client converts the same sequence into
// its own wire format.
func buildMessages(req core.ModelRequest) []chatMessage {
	messages := []chatMessage{{Role: roleSystem, Content: systemContent(req)}}

	for _, turn := range req.History {
		messages = append(messages,
			chatMessage{Role: roleUser, Content: turn.Query},
			chatMessage{Role: roleAssistant, Content: turn.Answer},
		)
	}

	return append(messages, chatMessage{Role: roleUser, Content: req.Query})
}

func systemContent(req core.ModelRequest) string {
	if req.NoEvidence || len(req.Chunks) == 0 {
		return noEvidenceInstruction
	}

	var b strings.Builder
	b.WriteString(groundedInstruction)
	b.WriteString("\n\nContext:\n")
	for _, c := range req.Chunks {
		fmt.Fprintf(&b, "[%s] %s\n\n", c.CitationID, c.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
