package driving

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// IngestService turns documents into a searchable namespace.
type IngestService interface {
	// Ingest chunks, embeds and upserts docs into req.Namespace.
	// Nothing is written unless every stage succeeds.
	Ingest(ctx context.Context, req domain.IngestRequest, docs []domain.Document) (*domain.IngestResult, error)
}
