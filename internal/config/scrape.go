package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/bizbot/pkg/log"
)

type ScrapeConfig struct {
	MaxPages int           `env:"BIZBOT_SCRAPE_MAX_PAGES" envDefault:"10"`
	Timeout  time.Duration `env:"BIZBOT_SCRAPE_TIMEOUT" envDefault:"10s"`
}

func NewScrapeConfig(ctx context.Context) *ScrapeConfig {
	c := &ScrapeConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Scrape config")
	}
	return c
}
