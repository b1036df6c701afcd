// Package openai provides an LLM service adapter using the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/llm/tokens"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/resilience"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

const providerName = "openai"

// Default configuration values.
const (
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL overrides the API base URL for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// MaxTokens bounds each completion. Zero leaves it to the API.
	MaxTokens int

	// Temperature controls randomness.
	Temperature float64

	// Counter sizes prompts against the model's context window. Nil
	// estimates.
	Counter *tokens.Counter
}

// LLMService completes prompts using the chat completions API.
type LLMService struct {
	client   openai.Client
	model    string
	window   int
	counter  *tokens.Counter
	defaults driven.GenerateOptions
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, domain.NewConfigError("llm.api_key", "required for openai")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &LLMService{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		window:  tokens.ContextWindow(cfg.Model),
		counter: cfg.Counter,
		defaults: driven.GenerateOptions{
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		},
	}, nil
}

// Complete returns the completion of prompt using the configured options.
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	return s.Generate(ctx, prompt, s.defaults)
}

// Generate sends prompt as a single user message.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(opts.Temperature),
	}
	budget := s.counter.Remaining(prompt, s.window, opts.MaxTokens)
	if s.window > 0 && budget == 0 {
		return "", domain.NewProviderError(providerName, "complete",
			fmt.Errorf("prompt fills the %d token context window of %s", s.window, s.model))
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(budget))
	}

	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify("complete", err)
	}
	if len(completion.Choices) == 0 {
		return "", domain.NewProviderError(providerName, "complete", errors.New("no completion choices returned"))
	}

	content := completion.Choices[0].Message.Content
	if logger.IsVerbose() {
		logger.Debug("OpenAI %s: %d prompt tokens (~%d counted), %d completion tokens",
			s.model, completion.Usage.PromptTokens, s.counter.Count(prompt), completion.Usage.CompletionTokens)
	}
	return content, nil
}

// classify maps an SDK error onto a ProviderError. 429 and 5xx are transient.
func classify(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return domain.NewTransientError(providerName, op, fmt.Errorf("%w: %w", domain.ErrRateLimited, err))
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return domain.NewTransientError(providerName, op, err)
		default:
			return domain.NewProviderError(providerName, op, err)
		}
	}
	return resilience.TransportError(providerName, op, err)
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.List(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", classify("ping", err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
