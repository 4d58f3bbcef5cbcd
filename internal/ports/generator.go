package ports

import "context"

type GenerateRequest struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Generator is a single-shot LLM text generation endpoint.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
