package driven

import "github.com/custodia-labs/askdocs/internal/core/domain"

// Splitter cuts text into bounded, overlapping chunks.
type Splitter interface {
	// Split returns the chunks of text in order.
	// Invalid size parameters yield a *domain.ConfigError.
	// Empty or whitespace-only text yields no chunks.
	Split(text string, chunkSize, overlap int) ([]domain.Chunk, error)
}
