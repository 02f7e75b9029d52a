package embed

import (
	"context"
	"fmt"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/pkg/log"
)

// NewEmbedder creates the configured embedding client.
func NewEmbedder(ctx context.Context, cfg core.EmbedConfig) (core.Embedder, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.GetEmbedProvider()).
		Str("model", cfg.GetEmbedModel()).
		Int("dims", cfg.GetEmbedDims()).
		Msg("starting embedding provider")

	if cfg.GetEmbedDims() <= 0 {
		return nil, core.NewConfigError("embedding dimensions must be positive, got %d", cfg.GetEmbedDims())
	}

	switch cfg.GetEmbedProvider() {
	case "openai":
		return NewOpenAIEmbedder(cfg.GetEmbedURL(), cfg.GetEmbedAPIKey(), cfg.GetEmbedModel(), cfg.GetEmbedDims()), nil
	case "ollama":
		return NewOllamaEmbedder(cfg.GetEmbedURL(), cfg.GetEmbedModel(), cfg.GetEmbedDims()), nil
	case "gemini":
		return NewGeminiEmbedder(cfg.GetEmbedAPIKey(), cfg.GetEmbedModel(), cfg.GetEmbedDims()), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.GetEmbedProvider())
	}
}
