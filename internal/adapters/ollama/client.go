// Package ollama is the resty client for an Ollama-compatible generation
// endpoint: POST /api/generate with stream disabled, one response string back.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/recallkit/recallkit/internal/ports"
)

type Client struct {
	http *resty.Client
}

var _ ports.Generator = (*Client)(nil)

func NewClient(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json"),
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate issues a single non-streaming completion. The caller bounds
// latency through ctx; inference may run for minutes on larger models.
func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(generateRequest{
			Model:  req.Model,
			Prompt: req.Prompt,
			Stream: false,
			Options: generateOptions{
				Temperature: req.Temperature,
				NumPredict:  req.MaxTokens,
			},
		}).
		SetResult(&out).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("generate: unexpected status %d", resp.StatusCode())
	}
	if out.Response == "" {
		return "", errors.New("generate: empty response")
	}

	return out.Response, nil
}
