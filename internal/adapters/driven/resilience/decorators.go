package resilience

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// Ensure decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.LLMService       = (*LLMService)(nil)
	_ driven.VectorStore      = (*VectorStore)(nil)
)

// EmbeddingService applies a Runner to Embed.
type EmbeddingService struct {
	driven.EmbeddingService
	runner *Runner
}

// WrapEmbedding decorates an embedding service.
func WrapEmbedding(next driven.EmbeddingService, runner *Runner) *EmbeddingService {
	return &EmbeddingService{EmbeddingService: next, runner: runner}
}

// Embed embeds texts with retries.
func (s *EmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := s.runner.Do(ctx, "embed", func(ctx context.Context) error {
		var err error
		out, err = s.EmbeddingService.Embed(ctx, texts)
		return err
	})
	return out, err
}

// LLMService applies a Runner to Complete.
type LLMService struct {
	driven.LLMService
	runner *Runner
}

// WrapLLM decorates an LLM service.
func WrapLLM(next driven.LLMService, runner *Runner) *LLMService {
	return &LLMService{LLMService: next, runner: runner}
}

// Complete generates text with retries.
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	var out string
	err := s.runner.Do(ctx, "complete", func(ctx context.Context) error {
		var err error
		out, err = s.LLMService.Complete(ctx, prompt)
		return err
	})
	return out, err
}

// VectorStore applies a Runner to Upsert and Query. Upserts are retried
// whole, which is safe because entry ids are deterministic.
type VectorStore struct {
	driven.VectorStore
	runner *Runner
}

// WrapVectorStore decorates a vector store.
func WrapVectorStore(next driven.VectorStore, runner *Runner) *VectorStore {
	return &VectorStore{VectorStore: next, runner: runner}
}

// Upsert writes entries with retries.
func (s *VectorStore) Upsert(ctx context.Context, namespace string, entries []domain.IndexEntry) error {
	return s.runner.Do(ctx, "upsert", func(ctx context.Context) error {
		return s.VectorStore.Upsert(ctx, namespace, entries)
	})
}

// Query searches with retries.
func (s *VectorStore) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.Match, error) {
	var out []domain.Match
	err := s.runner.Do(ctx, "query", func(ctx context.Context) error {
		var err error
		out, err = s.VectorStore.Query(ctx, namespace, vector, topK)
		return err
	})
	return out, err
}
