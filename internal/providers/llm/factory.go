package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/pkg/log"
)

// NewProvider creates the configured model client.
func NewProvider(ctx context.Context, cfg core.ProviderConfig) (core.ModelClient, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.GetProvider()).
		Str("model", cfg.GetModel()).
		Msg("starting llm provider")

	switch cfg.GetProvider() {
	case "gemini":
		return NewGemini(cfg.GetGeminiAPIKey(), cfg.GetModel()), nil
	case "openai":
		return NewOpenAI(cfg.GetOpenAIAPIKey(), cfg.GetModel()), nil
	case "openrouter":
		return NewOpenRouter(cfg.GetOpenRouterAPIKey(), cfg.GetModel()), nil
	case "ollama":
		return NewOllama(cfg.GetOllamaURL(), cfg.GetOllamaAPIKey(), cfg.GetModel()), nil
	case "custom":
		return NewCustomOpenAI(cfg.GetCustomURL(), cfg.GetCustomAPIKey(), cfg.GetModel()), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.GetProvider())
	}
}
