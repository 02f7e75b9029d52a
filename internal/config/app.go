package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v9"
	"github.com/sandevgo/bizbot/pkg/log"
)

type AppConfig struct {
	DataDir string `env:"BIZBOT_DATA_DIR" envDefault:".bizbot"`

	// Index backend: "sqlite" is durable, "memory" is ephemeral (tests, dry runs)
	IndexDriver string `env:"BIZBOT_INDEX_DRIVER" envDefault:"sqlite"`

	// Transport Flags
	EnableTelegram bool `env:"BIZBOT_ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool `env:"BIZBOT_ENABLE_CLI" envDefault:"true"`

	// Optional streamable-HTTP MCP listener; stdio serving is a start flag
	MCPHTTPAddr string `env:"BIZBOT_MCP_HTTP_ADDR"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.DataDir = resolveRuntimePath(c.DataDir)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.DataDir
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.DataDir, "bizbot.db")
}

func (c AppConfig) GetIndexDriver() string {
	return c.IndexDriver
}

func (c AppConfig) GetMCPHTTPAddr() string {
	return c.MCPHTTPAddr
}

func (c AppConfig) IsTelegramEnabled() bool {
	return c.EnableTelegram
}

func (c AppConfig) IsCLIEnabled() bool {
	return c.EnableCLI
}
