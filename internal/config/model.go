package config

import (
	"context"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/pkg/log"
)

// ModelConfig selects the language model collaborator. The provider set is
// closed; "custom" points at any OpenAI-compatible server.
type ModelConfig struct {
	Provider string `env:"BIZBOT_MODEL_PROVIDER" envDefault:"gemini"`
	Model    string `env:"BIZBOT_MODEL" envDefault:"gemini-2.0-flash"`

	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey     string `env:"BIZBOT_OPENAI_API_KEY"`
	OpenRouterAPIKey string `env:"BIZBOT_OPENROUTER_API_KEY"`
	OllamaURL        string `env:"BIZBOT_OLLAMA_URL" envDefault:"http://127.0.0.1:11434"`
	OllamaAPIKey     string `env:"BIZBOT_OLLAMA_API_KEY"`
	CustomURL        string `env:"BIZBOT_CUSTOM_URL"`
	CustomAPIKey     string `env:"BIZBOT_CUSTOM_API_KEY"`

	// Budget for one model dispatch; exceeding it fails the turn.
	Timeout time.Duration `env:"BIZBOT_MODEL_TIMEOUT" envDefault:"60s"`
}

var knownProviders = []string{"gemini", "openai", "openrouter", "ollama", "custom"}

func NewModelConfig(ctx context.Context) *ModelConfig {
	c := &ModelConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Model config")
	}
	return c
}

func (c *ModelConfig) GetProvider() string { return c.Provider }
func (c *ModelConfig) GetModel() string    { return c.Model }

// SetModel accepts "model" or "provider/model". A leading segment that names a
// known provider switches the provider as well; anything else is treated as
// part of the model id (OpenRouter ids contain slashes).
func (c *ModelConfig) SetModel(spec string) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return core.NewConfigError("model must not be empty")
	}

	if prefix, rest, ok := strings.Cut(spec, "/"); ok {
		for _, p := range knownProviders {
			if prefix == p {
				c.Provider = prefix
				c.Model = rest
				return nil
			}
		}
	}

	c.Model = spec
	return nil
}

func (c *ModelConfig) GetGeminiAPIKey() string     { return c.GeminiAPIKey }
func (c *ModelConfig) GetOpenAIAPIKey() string     { return c.OpenAIAPIKey }
func (c *ModelConfig) GetOpenRouterAPIKey() string { return c.OpenRouterAPIKey }
func (c *ModelConfig) GetOllamaURL() string        { return c.OllamaURL }
func (c *ModelConfig) GetOllamaAPIKey() string     { return c.OllamaAPIKey }
func (c *ModelConfig) GetCustomURL() string        { return c.CustomURL }
func (c *ModelConfig) GetCustomAPIKey() string     { return c.CustomAPIKey }
func (c *ModelConfig) GetModelTimeout() time.Duration {
	return c.Timeout
}
