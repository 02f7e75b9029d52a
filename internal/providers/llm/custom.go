package llm

import (
	"context"

	"github.com/sandevgo/bizbot/internal/core"
)

// CustomOpenAI targets any self-hosted OpenAI-compatible endpoint
// (vLLM, LM Studio, llama.cpp server and the like).
type CustomOpenAI struct {
	*OpenAICompatible
}

func NewCustomOpenAI(baseURL, apiKey, model string) *CustomOpenAI {
	return &CustomOpenAI{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}
}

func (c *CustomOpenAI) Models(ctx context.Context) ([]core.Model, error) {
	return c.listModels(ctx)
}
