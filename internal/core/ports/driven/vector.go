package driven

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// VectorIndex stores and queries embeddings partitioned by namespace.
type VectorIndex interface {
	// Upsert inserts or replaces entries by ID within namespace.
	// Implementations apply the whole batch or nothing.
	Upsert(ctx context.Context, namespace string, entries []domain.IndexEntry) error

	// Query returns up to topK entries of namespace nearest to vector,
	// most similar first. An unknown namespace yields no matches.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.Match, error)
}

// NamespaceAdmin manages whole namespaces of an index.
type NamespaceAdmin interface {
	// DeleteNamespace removes every entry of namespace.
	DeleteNamespace(ctx context.Context, namespace string) error

	// Count returns the number of entries stored in namespace.
	Count(ctx context.Context, namespace string) (int, error)
}

// VectorStore is a complete vector index backend.
type VectorStore interface {
	VectorIndex
	NamespaceAdmin

	// Close releases resources.
	Close() error
}
