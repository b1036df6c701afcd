package domain

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, backend or document type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Question condensing and answer generation are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Neither ingestion nor retrieval can run without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// Pipeline Errors.

	// ErrConfig indicates invalid chunking or retrieval parameters.
	ErrConfig = errors.New("invalid configuration")

	// ErrNoDocuments indicates an ingestion run received no documents.
	ErrNoDocuments = errors.New("no documents found in the specified directory")

	// ErrEmptyChunkSet indicates the documents produced no chunks.
	ErrEmptyChunkSet = errors.New("failed to split documents into smaller chunks")

	// ErrEmbeddingCountMismatch indicates the embedding provider returned a
	// different number of vectors than texts it was given.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// Provider Errors.

	// ErrProvider indicates an embedding, generation or index backend failed.
	ErrProvider = errors.New("provider error")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ConfigError reports an invalid parameter.
type ConfigError struct {
	Field  string
	Reason string
}

// NewConfigError creates a ConfigError.
func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrConfig) true.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// EmbeddingCountMismatchError carries the expected and returned vector counts.
type EmbeddingCountMismatchError struct {
	Expected int
	Got      int
}

func (e *EmbeddingCountMismatchError) Error() string {
	return fmt.Sprintf("failed to generate embeddings or mismatched embedding count: expected %d, got %d",
		e.Expected, e.Got)
}

// Is makes errors.Is(err, ErrEmbeddingCountMismatch) true.
func (e *EmbeddingCountMismatchError) Is(target error) bool {
	return target == ErrEmbeddingCountMismatch
}

// ProviderError wraps a failure of an external provider.
type ProviderError struct {
	// Provider names the backend, e.g. "openai", "sqlite".
	Provider string

	// Op is the failed operation, e.g. "embed", "complete", "upsert".
	Op string

	// Transient marks failures worth retrying (network, 429, 5xx).
	Transient bool

	// Err is the upstream cause.
	Err error
}

// NewProviderError creates a non-transient ProviderError.
func NewProviderError(provider, op string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// NewTransientError creates a ProviderError that may be retried.
func NewTransientError(provider, op string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Transient: true, Err: err}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

// Unwrap returns the upstream cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrProvider) true.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// AsProviderError returns err unchanged when it already is a ProviderError
// or a context error, and wraps it as a non-transient ProviderError otherwise.
func AsProviderError(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return NewProviderError(provider, op, err)
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return errors.Is(err, ErrRateLimited)
}

// Stable error kinds reported to callers.
const (
	KindConfig        = "config"
	KindNoDocuments   = "no_documents"
	KindEmptyChunkSet = "empty_chunk_set"
	KindCountMismatch = "embedding_count_mismatch"
	KindProvider      = "provider"
	KindNotFound      = "not_found"
	KindInvalidInput  = "invalid_input"
	KindCancelled     = "cancelled"
	KindUnavailable   = "unavailable"
	KindUnknown       = "unknown"
)

// ErrorKind maps err to one of the stable Kind* strings.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfig):
		return KindConfig
	case errors.Is(err, ErrNoDocuments):
		return KindNoDocuments
	case errors.Is(err, ErrEmptyChunkSet):
		return KindEmptyChunkSet
	case errors.Is(err, ErrEmbeddingCountMismatch):
		return KindCountMismatch
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrProvider), errors.Is(err, ErrRateLimited):
		return KindProvider
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, ErrLLMUnavailable), errors.Is(err, ErrEmbeddingUnavailable),
		errors.Is(err, ErrVectorIndexUnavailable):
		return KindUnavailable
	default:
		return KindUnknown
	}
}
