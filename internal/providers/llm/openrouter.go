package llm

import (
	"context"

	"github.com/sandevgo/bizbot/internal/core"
)

// OpenRouter proxies many upstream models behind one OpenAI-shaped API.
// The referer headers are how OpenRouter attributes traffic.
type OpenRouter struct {
	*OpenAICompatible
}

func NewOpenRouter(apiKey, model string) *OpenRouter {
	return &OpenRouter{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    "https://openrouter.ai/api",
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			ExtraHeaders: map[string]string{
				"HTTP-Referer": core.BizRepositoryURL,
				"X-Title":      core.BizName,
			},
		}),
	}
}

func (o *OpenRouter) Models(ctx context.Context) ([]core.Model, error) {
	return o.listModels(ctx)
}
