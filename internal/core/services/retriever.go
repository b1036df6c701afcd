package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Retrieval is the outcome of a similarity lookup.
type Retrieval struct {
	// Context is the joined text of the surviving matches, capped in length.
	Context string

	// Matches survived the score filter, best first.
	Matches []domain.Match
}

// Retriever turns a query vector into bounded prompt context.
type Retriever struct {
	index driven.VectorIndex
	opts  domain.RetrievalSettings
}

// NewRetriever creates a retriever. Zero TopK or MaxContextChars fall back to defaults.
func NewRetriever(index driven.VectorIndex, opts domain.RetrievalSettings) *Retriever {
	if opts.TopK <= 0 {
		opts.TopK = domain.DefaultTopK
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = domain.DefaultMaxContextChars
	}
	return &Retriever{index: index, opts: opts}
}

// Retrieve queries namespace for the nearest entries to vector, keeps those
// scoring strictly above the threshold and joins their text.
// No surviving match yields an empty context, not an error.
func (r *Retriever) Retrieve(ctx context.Context, namespace string, vector []float32) (*Retrieval, error) {
	if r.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	matches, err := r.index.Query(ctx, namespace, vector, r.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", domain.AsProviderError("index", "query", err))
	}
	logger.Debug("Index returned %d matches (topK=%d)", len(matches), r.opts.TopK)

	kept := make([]domain.Match, 0, len(matches))
	for _, m := range matches {
		if m.Scored && m.Score > r.opts.ScoreThreshold {
			kept = append(kept, m)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	logger.Debug("Matches above %.2f: %d", r.opts.ScoreThreshold, len(kept))

	texts := make([]string, len(kept))
	for i, m := range kept {
		texts[i] = m.Metadata.Text
	}

	return &Retrieval{
		Context: truncateRunes(strings.Join(texts, "\n"), r.opts.MaxContextChars),
		Matches: kept,
	}, nil
}

// truncateRunes returns the first limit code points of s.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
