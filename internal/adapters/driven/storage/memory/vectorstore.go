package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Queries are brute-force cosine similarity.
type VectorStore struct {
	mu         sync.RWMutex
	namespaces map[string]*namespaceEntries
}

// namespaceEntries keeps entries in first-insertion order.
type namespaceEntries struct {
	order   []string
	entries map[string]domain.IndexEntry
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		namespaces: make(map[string]*namespaceEntries),
	}
}

// Upsert inserts or replaces entries. The batch is applied under one lock,
// so readers never observe a partial batch.
func (s *VectorStore) Upsert(_ context.Context, namespace string, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = &namespaceEntries{entries: make(map[string]domain.IndexEntry)}
		s.namespaces[namespace] = ns
	}
	for _, e := range entries {
		if _, exists := ns.entries[e.ID]; !exists {
			ns.order = append(ns.order, e.ID)
		}
		e.Vector = slices.Clone(e.Vector)
		ns.entries[e.ID] = e
	}
	return nil
}

// Query returns the topK entries most similar to vector.
func (s *VectorStore) Query(_ context.Context, namespace string, vector []float32, topK int) ([]domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[namespace]
	if !ok || topK <= 0 {
		return nil, nil
	}

	candidates := make([]vecmath.Scored[domain.IndexEntry], 0, len(ns.order))
	for _, id := range ns.order {
		e := ns.entries[id]
		candidates = append(candidates, vecmath.Scored[domain.IndexEntry]{Item: e, Score: vecmath.Cosine(vector, e.Vector)})
	}

	top := vecmath.TopK(candidates, topK)
	matches := make([]domain.Match, len(top))
	for i, c := range top {
		matches[i] = domain.Match{ID: c.Item.ID, Score: c.Score, Scored: true, Metadata: c.Item.Metadata}
	}
	return matches, nil
}

// DeleteNamespace removes every entry of namespace.
func (s *VectorStore) DeleteNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, namespace)
	return nil
}

// Count returns the number of entries in namespace.
func (s *VectorStore) Count(_ context.Context, namespace string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ns, ok := s.namespaces[namespace]; ok {
		return len(ns.entries), nil
	}
	return 0, nil
}

// Close releases resources (no-op for memory store).
func (s *VectorStore) Close() error {
	return nil
}
