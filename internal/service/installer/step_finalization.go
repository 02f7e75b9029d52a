package installer

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// FinalizationStep computes derived values and final env var formatting
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	channel := state.EnvVars["BIZBOT_CHAT_CHANNEL"]

	// Set derived values
	if strings.Contains(channel, "Telegram") && state.EnvVars["BIZBOT_TELEGRAM_TOKEN"] != "" {
		state.EnvVars["BIZBOT_ENABLE_TELEGRAM"] = "true"
	} else {
		state.EnvVars["BIZBOT_ENABLE_TELEGRAM"] = "false"
	}
	if strings.Contains(channel, "CLI") {
		state.EnvVars["BIZBOT_ENABLE_CLI"] = "true"
	} else {
		state.EnvVars["BIZBOT_ENABLE_CLI"] = "false"
	}

	// The embedding backend reuses the provider key when they match and no
	// dedicated key was given.
	if state.EnvVars["BIZBOT_EMBED_API_KEY"] == "" {
		switch state.EnvVars["BIZBOT_EMBED_PROVIDER"] {
		case "openai":
			state.EnvVars["BIZBOT_EMBED_API_KEY"] = state.EnvVars["BIZBOT_OPENAI_API_KEY"]
		case "gemini":
			state.EnvVars["BIZBOT_EMBED_API_KEY"] = state.EnvVars["GEMINI_API_KEY"]
		}
	}

	// Set defaults
	if state.EnvVars["BIZBOT_DEBUG"] == "" {
		state.EnvVars["BIZBOT_DEBUG"] = "0"
	}

	// Only used as intermediate state
	delete(state.EnvVars, "BIZBOT_CHAT_CHANNEL")

	// Signal completion
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}
