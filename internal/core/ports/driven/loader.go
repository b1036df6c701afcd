package driven

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// DocumentLoader reads documents from a location.
type DocumentLoader interface {
	// Load returns the normalised documents found under root.
	// Unsupported files are skipped.
	Load(ctx context.Context, root string) ([]domain.Document, error)

	// Watch reports changes under root until ctx is cancelled.
	Watch(ctx context.Context, root string) (<-chan domain.DocumentChange, error)
}
