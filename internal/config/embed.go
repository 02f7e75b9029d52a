package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/bizbot/pkg/log"
)

// EmbedConfig selects the embedding backend. The vector dimension is fixed per
// index; changing it requires rebuilding the store.
type EmbedConfig struct {
	Provider string `env:"BIZBOT_EMBED_PROVIDER" envDefault:"openai"`
	Model    string `env:"BIZBOT_EMBED_MODEL" envDefault:"text-embedding-3-small"`
	URL      string `env:"BIZBOT_EMBED_URL"`
	APIKey   string `env:"BIZBOT_EMBED_API_KEY"`
	Dims     int    `env:"BIZBOT_EMBED_DIM" envDefault:"1536"`
}

func NewEmbedConfig(ctx context.Context) *EmbedConfig {
	c := &EmbedConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Embed config")
	}
	return c
}

func (c *EmbedConfig) GetEmbedProvider() string { return c.Provider }
func (c *EmbedConfig) GetEmbedModel() string    { return c.Model }
func (c *EmbedConfig) GetEmbedURL() string      { return c.URL }
func (c *EmbedConfig) GetEmbedAPIKey() string   { return c.APIKey }
func (c *EmbedConfig) GetEmbedDims() int        { return c.Dims }
