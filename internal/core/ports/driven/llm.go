// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// TextGenerator completes a prompt.
// Calls are independent: no conversation state is kept between them.
type TextGenerator interface {
	// Complete returns the model's completion of prompt.
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLMService is a configured language model provider.
//
// Implementations include:
//   - OpenAI (gpt-4o-mini and compatible servers)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	TextGenerator

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
