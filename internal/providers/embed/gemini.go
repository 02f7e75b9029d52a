package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GeminiEmbedder calls the Google generative language embedContent endpoint.
type GeminiEmbedder struct {
	baseClient
	dims int
}

func NewGeminiEmbedder(apiKey, model string, dims int) *GeminiEmbedder {
	if model == "" {
		model = "text-embedding-004"
	}
	return &GeminiEmbedder{
		baseClient: newBaseClient("https://generativelanguage.googleapis.com", apiKey, model),
		dims:       dims,
	}
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]any{
		"content": map[string]any{
			"parts": []map[string]string{{"text": text}},
		},
	}

	headers := map[string]string{
		"x-goog-api-key": e.apiKey,
	}

	path := fmt.Sprintf("/v1beta/models/%s:embedContent", e.model)
	resp, err := e.doRequest(ctx, http.MethodPost, path, payload, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var result struct {
		Embedding struct {
			Values []float32 `json:"values"`
		} `json:"embedding"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(result.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}

	vec := result.Embedding.Values
	if e.dims > 0 && len(vec) != e.dims {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(vec), e.dims)
	}
	return vec, nil
}

func (e *GeminiEmbedder) Dims() int {
	return e.dims
}
