package core

import (
	"context"
	"time"
)

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	IsTelegramEnabled() bool
	IsCLIEnabled() bool
}

type ProviderConfig interface {
	GetProvider() string
	GetModel() string
	SetModel(model string) error
	GetGeminiAPIKey() string
	GetOpenAIAPIKey() string
	GetOpenRouterAPIKey() string
	GetOllamaURL() string
	GetOllamaAPIKey() string
	GetCustomURL() string
	GetCustomAPIKey() string
	GetModelTimeout() time.Duration
}

type EmbedConfig interface {
	GetEmbedProvider() string
	GetEmbedModel() string
	GetEmbedURL() string
	GetEmbedAPIKey() string
	GetEmbedDims() int
}

type RetrievalConfig interface {
	GetTopK() int
	GetMinSimilarity() float64
	GetMaxContextTokens() int
	GetMaxHistoryTurns() int
}

type TelegramConfig interface {
	GetTelegramToken() string
	GetTelegramOwnerID() int64
}

type GlobalState interface {
	ChangeModel(ctx context.Context, model string) error
}
