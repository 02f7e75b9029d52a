package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OllamaEmbedder uses a local ollama server.
type OllamaEmbedder struct {
	baseClient
	dims int
}

func NewOllamaEmbedder(baseURL, model string, dims int) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaEmbedder{
		baseClient: newBaseClient(baseURL, "", model),
		dims:       dims,
	}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]any{
		"model":  e.model,
		"prompt": text,
	}

	resp, err := e.doRequest(ctx, http.MethodPost, "/api/embeddings", payload, nil)
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
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}

	if e.dims > 0 && len(result.Embedding) != e.dims {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(result.Embedding), e.dims)
	}
	return result.Embedding, nil
}

func (e *OllamaEmbedder) Dims() int {
	return e.dims
}
