package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sandevgo/bizbot/internal/core"
)

type OpenAICompatible struct {
	baseProvider
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
}

type OpenAICompatibleConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
	}
}

func (o *OpenAICompatible) Generate(ctx context.Context, req core.ModelRequest) (core.ModelResponse, error) {
	payload := map[string]any{
		"model":    o.model,
		"messages": buildMessages(req),
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, o.headers())
	if err != nil {
		return core.ModelResponse{}, core.NewModelClientError(err, true, "model endpoint unreachable")
	}
	defer resp.Body.Close()

	return parseChatResponse(resp)
}

func (o *OpenAICompatible) headers() map[string]string {
	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}
	return headers
}

// listModels fetches /v1/models, the listing every OpenAI-shaped endpoint
// serves. Providers with their own catalog endpoint override Models instead.
func (o *OpenAICompatible) listModels(ctx context.Context) ([]core.Model, error) {
	resp, err := o.doRequest(ctx, http.MethodGet, "/v1/models", nil, o.headers())
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read models response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Data []core.Model `json:"data"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}

	models := result.Data
	for i := range models {
		if models[i].Name == "" {
			models[i].Name = models[i].ID
		}
	}
	return models, nil
}

func parseChatResponse(resp *http.Response) (core.ModelResponse, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.ModelResponse{}, core.NewModelClientError(err, true, "read model response")
	}

	if resp.StatusCode != http.StatusOK {
		return core.ModelResponse{}, core.NewModelClientError(
			fmt.Errorf("http %d: %s", resp.StatusCode, string(data)),
			retryableStatus(resp.StatusCode),
			"model endpoint returned http %d", resp.StatusCode,
		)
	}

	var result struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.ModelResponse{}, core.NewModelClientError(err, false, "decode model response")
	}
	if len(result.Choices) == 0 {
		return core.ModelResponse{}, core.NewModelClientError(nil, false, "model returned no choices")
	}
	return core.ModelResponse{Answer: result.Choices[0].Message.Content}, nil
}
