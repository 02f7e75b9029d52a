package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/sandevgo/bizbot/internal/core"
)

// DynamicProvider wraps any model client and lets the /model command swap the
// active model at runtime without tearing down the services that hold it.
type DynamicProvider struct {
	config  core.ProviderConfig
	mu      sync.RWMutex
	current core.ModelClient
}

func NewDynamicProvider(ctx context.Context, config core.ProviderConfig) (*DynamicProvider, error) {
	provider, err := NewProvider(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial provider: %w", err)
	}

	return &DynamicProvider{
		config:  config,
		current: provider,
	}, nil
}

func (d *DynamicProvider) Generate(ctx context.Context, req core.ModelRequest) (core.ModelResponse, error) {
	return d.active().Generate(ctx, req)
}

func (d *DynamicProvider) Models(ctx context.Context) ([]core.Model, error) {
	return d.active().Models(ctx)
}

func (d *DynamicProvider) active() core.ModelClient {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

func (d *DynamicProvider) SetModel(ctx context.Context, model string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.config.SetModel(model); err != nil {
		return err
	}

	newProvider, err := NewProvider(ctx, d.config)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	d.current = newProvider
	return nil
}
