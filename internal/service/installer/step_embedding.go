package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type embedPreset struct {
	provider string
	model    string
	dims     int
	label    string
}

// Presets cover the embedding models the pipeline is tuned for. The vector
// dimension is fixed per index, so it is written alongside the model.
var embedPresets = []embedPreset{
	{"openai", "text-embedding-3-small", 1536, "OpenAI text-embedding-3-small (1536d)"},
	{"openai", "text-embedding-3-large", 3072, "OpenAI text-embedding-3-large (3072d)"},
	{"gemini", "text-embedding-004", 768, "Gemini text-embedding-004 (768d)"},
	{"ollama", "nomic-embed-text", 768, "Ollama nomic-embed-text (768d, local)"},
}

// EmbeddingStep selects the embedding backend used for chunks and queries
type EmbeddingStep struct {
	cursor int
}

func NewEmbeddingStep() Step {
	return &EmbeddingStep{}
}

func (s *EmbeddingStep) Init() tea.Cmd {
	return nil
}

func (s *EmbeddingStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(embedPresets)-1 {
				s.cursor++
			}
		case "enter":
			preset := embedPresets[s.cursor]
			state.EnvVars["BIZBOT_EMBED_PROVIDER"] = preset.provider
			state.EnvVars["BIZBOT_EMBED_MODEL"] = preset.model
			state.EnvVars["BIZBOT_EMBED_DIM"] = fmt.Sprintf("%d", preset.dims)
			return nil, nil
		}
	}
	return s, nil
}

func (s *EmbeddingStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString("Select your Embedding Model:\n\n")
	for i, preset := range embedPresets {
		cursor := " "
		if s.cursor == i {
			cursor = "❯"
			b.WriteString(selStyle.Render(fmt.Sprintf("%s %s", cursor, preset.label)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("%s %s", cursor, preset.label)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
