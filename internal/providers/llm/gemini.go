package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sandevgo/bizbot/internal/core"
)

// Gemini talks to the Google Generative Language API. Unlike the
// OpenAI-shaped providers it carries the system instruction in a dedicated
// field and uses "model" as the assistant role.
type Gemini struct {
	baseProvider
}

func NewGemini(apiKey, model string) *Gemini {
	return &Gemini{
		baseProvider: newBaseProvider("https://generativelanguage.googleapis.com", apiKey, model),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

func (g *Gemini) Generate(ctx context.Context, req core.ModelRequest) (core.ModelResponse, error) {
	messages := buildMessages(req)

	payload := map[string]any{
		"systemInstruction": geminiContent{
			Parts: []geminiPart{{Text: messages[0].Content}},
		},
	}

	var contents []geminiContent
	for _, m := range messages[1:] {
		role := "user"
		if m.Role == roleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}
	payload["contents"] = contents

	headers := map[string]string{
		"x-goog-api-key": g.apiKey,
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", url.PathEscape(g.model))
	resp, err := g.doRequest(ctx, http.MethodPost, path, payload, headers)
	if err != nil {
		return core.ModelResponse{}, core.NewModelClientError(err, true, "model endpoint unreachable")
	}
	defer resp.Body.Close()

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
		Candidates []struct {
			Content struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.ModelResponse{}, core.NewModelClientError(err, false, "decode model response")
	}
	if len(result.Candidates) == 0 {
		return core.ModelResponse{}, core.NewModelClientError(nil, false, "model returned no candidates")
	}

	var text strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return core.ModelResponse{Answer: text.String()}, nil
}

func (g *Gemini) Models(ctx context.Context) ([]core.Model, error) {
	headers := map[string]string{
		"x-goog-api-key": g.apiKey,
	}

	resp, err := g.doRequest(ctx, http.MethodGet, "/v1beta/models", nil, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Models []struct {
			Name        string `json:"name"`
			DisplayName string `json:"displayName"`
		} `json:"models"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	models := make([]core.Model, 0, len(result.Models))
	for _, m := range result.Models {
		models = append(models, core.Model{
			ID:   strings.TrimPrefix(m.Name, "models/"),
			Name: m.DisplayName,
		})
	}
	return models, nil
}
