package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/pkg/log"
)

// RAGConfig holds the chunking and retrieval knobs shared by the ingestion
// and query paths.
type RAGConfig struct {
	ChunkTokens   int     `env:"BIZBOT_CHUNK_TOKENS" envDefault:"400"`
	ChunkOverlap  int     `env:"BIZBOT_CHUNK_OVERLAP" envDefault:"50"`
	TopK          int     `env:"BIZBOT_TOP_K" envDefault:"5"`
	MaxContext    int     `env:"BIZBOT_MAX_CONTEXT_TOKENS" envDefault:"2000"`
	MaxHistory    int     `env:"BIZBOT_MAX_HISTORY_TURNS" envDefault:"20"`
	MinSimilarity float64 `env:"BIZBOT_MIN_SIMILARITY" envDefault:"0.3"`
}

func NewRAGConfig(ctx context.Context) *RAGConfig {
	c := &RAGConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse RAG config")
	}
	if err := c.Validate(); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("invalid RAG config")
	}
	return c
}

// Validate rejects parameter combinations the chunker cannot honor.
func (c *RAGConfig) Validate() error {
	if c.ChunkTokens <= 0 {
		return core.NewConfigError("chunk_tokens must be positive, got %d", c.ChunkTokens)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkTokens {
		return core.NewConfigError("chunk_overlap %d must be in [0, chunk_tokens=%d)", c.ChunkOverlap, c.ChunkTokens)
	}
	if c.MaxContext <= 0 {
		return core.NewConfigError("max_context_tokens must be positive, got %d", c.MaxContext)
	}
	return nil
}

func (c *RAGConfig) GetTopK() int              { return c.TopK }
func (c *RAGConfig) GetMinSimilarity() float64 { return c.MinSimilarity }
func (c *RAGConfig) GetMaxContextTokens() int  { return c.MaxContext }
func (c *RAGConfig) GetMaxHistoryTurns() int   { return c.MaxHistory }
