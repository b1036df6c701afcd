// Package ai provides factory functions for creating AI service adapters
// and the vector index they feed.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/askdocs/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/askdocs/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/askdocs/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/askdocs/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/askdocs/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/llm/tokens"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/resilience"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/askdocs/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// encodingTimeout bounds the tokenizer load in Init.
const encodingTimeout = 5 * time.Second

// settingsHint is appended to provider errors to point at the fix.
const settingsHint = "Run 'askdocs settings' to fix"

// LocalStore is the embedded database that backs the sqlite index.
type LocalStore interface {
	VectorStore() driven.VectorStore
}

// InitResult contains the result of AI service initialisation.
// Unconfigured providers are left nil.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorStore      driven.VectorStore
	Warnings         []string // Non-fatal issues found during initialisation.
}

// Embedding returns the embedding service or an error explaining why it is missing.
func (r *InitResult) Embedding() (driven.EmbeddingService, error) {
	if r.EmbeddingService == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured. %s", domain.ErrEmbeddingUnavailable, settingsHint)
	}
	return r.EmbeddingService, nil
}

// LLM returns the LLM service or an error explaining why it is missing.
func (r *InitResult) LLM() (driven.LLMService, error) {
	if r.LLMService == nil {
		return nil, fmt.Errorf("%w: no LLM provider configured. %s", domain.ErrLLMUnavailable, settingsHint)
	}
	return r.LLMService, nil
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorStore != nil {
		r.VectorStore.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates the providers and the vector index described by settings.
// Every provider and index call goes through a resilience runner built
// from settings.Provider. When ping is true configured providers are
// checked for connectivity first.
func Init(ctx context.Context, settings *domain.AppSettings, local LocalStore, ping bool) (*InitResult, error) {
	result := &InitResult{}
	policy := resilience.FromSettings(settings.Provider)
	counter := loadCounter(ctx, settings)

	embedSvc, err := createEmbedding(&settings.Embedding, settings.Provider.Timeout, ping, counter)
	if err != nil {
		return nil, err
	}
	if embedSvc != nil {
		result.EmbeddingService = resilience.WrapEmbedding(embedSvc, resilience.NewRunner(policy))
	} else {
		result.Warnings = append(result.Warnings, "embedding provider not configured")
	}

	llmSvc, err := createLLM(&settings.LLM, settings.Provider.Timeout, ping, counter)
	if err != nil {
		result.Close()
		return nil, err
	}
	if llmSvc != nil {
		result.LLMService = resilience.WrapLLM(llmSvc, resilience.NewRunner(policy))
	} else {
		result.Warnings = append(result.Warnings, "LLM provider not configured")
	}

	dimensions := settings.Index.Dimensions
	if dimensions == 0 && result.EmbeddingService != nil {
		dimensions = result.EmbeddingService.Dimensions()
	}
	store, err := CreateVectorStore(ctx, settings.Index, dimensions, local)
	if err != nil {
		result.Close()
		return nil, err
	}
	result.VectorStore = resilience.WrapVectorStore(store, resilience.NewRunner(resilience.Policy{
		Timeout:    policy.Timeout,
		MaxRetries: policy.MaxRetries,
	}))

	for _, w := range result.Warnings {
		logger.Debug("AI init: %s", w)
	}
	return result, nil
}

func createEmbedding(
	settings *domain.EmbeddingSettings, timeout time.Duration, ping bool, counter *tokens.Counter,
) (driven.EmbeddingService, error) {
	svc, err := newEmbeddingService(settings, timeout, counter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, settingsHint)
	}
	if svc == nil || !ping {
		return svc, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, settingsHint)
	}
	return svc, nil
}

func createLLM(
	settings *domain.LLMSettings, timeout time.Duration, ping bool, counter *tokens.Counter,
) (driven.LLMService, error) {
	svc, err := newLLMService(settings, timeout, counter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, settingsHint)
	}
	if svc == nil || !ping {
		return svc, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, settingsHint)
	}
	return svc, nil
}

// loadCounter loads the tokenizer when a configured OpenAI or Anthropic
// provider sizes prompts with it. A failed or slow load falls back to
// estimates.
func loadCounter(ctx context.Context, settings *domain.AppSettings) *tokens.Counter {
	counts := func(p domain.AIProvider) bool {
		return p == domain.AIProviderOpenAI || p == domain.AIProviderAnthropic
	}
	if !(settings.Embedding.IsConfigured() && counts(settings.Embedding.Provider)) &&
		!(settings.LLM.IsConfigured() && counts(settings.LLM.Provider)) {
		return tokens.Estimator()
	}

	ctx, cancel := context.WithTimeout(ctx, encodingTimeout)
	defer cancel()
	counter, err := tokens.Load(ctx)
	if err != nil {
		logger.Debug("Token counts are estimated: %v", err)
		return tokens.Estimator()
	}
	return counter
}

// CreateVectorStore opens the configured index backend.
// The sqlite backend reuses local; the postgres backend connects to
// settings.PostgresDSN and sizes its vector column with dimensions.
func CreateVectorStore(
	ctx context.Context, settings domain.IndexSettings, dimensions int, local LocalStore,
) (driven.VectorStore, error) {
	switch settings.Backend {
	case domain.IndexBackendSQLite, "":
		if local == nil {
			return nil, fmt.Errorf("%w: local database not open", domain.ErrVectorIndexUnavailable)
		}
		return local.VectorStore(), nil

	case domain.IndexBackendMemory:
		return memory.NewVectorStore(), nil

	case domain.IndexBackendPostgres:
		store, err := postgres.NewStore(ctx, settings.PostgresDSN, dimensions)
		if err != nil {
			if errors.Is(err, domain.ErrConfig) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		return store, nil

	default:
		return nil, domain.NewConfigError("index.backend", fmt.Sprintf("unsupported backend %q", settings.Backend))
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(
	settings *domain.EmbeddingSettings, timeout time.Duration,
) (driven.EmbeddingService, error) {
	return createEmbedding(settings, timeout, true, nil)
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings, timeout time.Duration) (driven.LLMService, error) {
	return createLLM(settings, timeout, true, nil)
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings, 0)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings, 0)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured. A zero timeout keeps the
// adapter default.
func CreateEmbeddingService(settings *domain.EmbeddingSettings, timeout time.Duration) (driven.EmbeddingService, error) {
	return newEmbeddingService(settings, timeout, nil)
}

func newEmbeddingService(
	settings *domain.EmbeddingSettings, timeout time.Duration, counter *tokens.Counter,
) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings, timeout), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings, timeout, counter)

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings, timeout time.Duration) (driven.LLMService, error) {
	return newLLMService(settings, timeout, nil)
}

func newLLMService(
	settings *domain.LLMSettings, timeout time.Duration, counter *tokens.Counter,
) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings, timeout), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings, timeout, counter)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings, timeout, counter)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings, timeout time.Duration) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    timeout,
		Dimensions: dimensions,
	})
}

func createOpenAIEmbedding(
	settings *domain.EmbeddingSettings, timeout time.Duration, counter *tokens.Counter,
) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    timeout,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
		Counter:    counter,
	})
}

func createOllamaLLM(settings *domain.LLMSettings, timeout time.Duration) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL:     settings.BaseURL,
		Model:       settings.Model,
		Timeout:     timeout,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	})
}

func createOpenAILLM(settings *domain.LLMSettings, timeout time.Duration, counter *tokens.Counter) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:      settings.APIKey,
		BaseURL:     settings.BaseURL,
		Model:       settings.Model,
		Timeout:     timeout,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
		Counter:     counter,
	})
}

func createAnthropicLLM(
	settings *domain.LLMSettings, timeout time.Duration, counter *tokens.Counter,
) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:      settings.APIKey,
		BaseURL:     settings.BaseURL,
		Model:       settings.Model,
		Timeout:     timeout,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
		Counter:     counter,
	})
}
