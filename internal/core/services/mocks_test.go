package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// --- Mock implementations ---

// mockEmbedder implements driven.Embedder for testing.
// Each text is embedded as [len(text), 1].
type mockEmbedder struct {
	mu     sync.Mutex
	calls  int
	inputs [][]string
	err    error
	drop   int // vectors to omit from the response
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.inputs = append(m.inputs, texts)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts[:len(texts)-min(m.drop, len(texts))] {
		out = append(out, []float32{float32(len(t)), 1})
	}
	return out, nil
}

// mockGenerator implements driven.TextGenerator for testing.
// It replies with responses in order and records every prompt.
type mockGenerator struct {
	prompts   []string
	responses []string
	err       error
	failAt    int // 1-based call number that fails with err; 0 fails every call when err is set
}

func (m *mockGenerator) Complete(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	call := len(m.prompts)
	if m.err != nil && (m.failAt == 0 || m.failAt == call) {
		return "", m.err
	}
	if call <= len(m.responses) {
		return m.responses[call-1], nil
	}
	return "", nil
}

// mockIndex implements driven.VectorStore for testing.
type mockIndex struct {
	upsertCalls int
	queryCalls  int
	upserted    map[string][]domain.IndexEntry
	matches     []domain.Match
	upsertErr   error
	queryErr    error
	deleted     []string
	lastTopK    int
}

func (m *mockIndex) Upsert(_ context.Context, namespace string, entries []domain.IndexEntry) error {
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.upserted == nil {
		m.upserted = make(map[string][]domain.IndexEntry)
	}
	m.upserted[namespace] = append(m.upserted[namespace], entries...)
	return nil
}

func (m *mockIndex) Query(_ context.Context, _ string, _ []float32, topK int) ([]domain.Match, error) {
	m.queryCalls++
	m.lastTopK = topK
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.matches, nil
}

func (m *mockIndex) DeleteNamespace(_ context.Context, namespace string) error {
	m.deleted = append(m.deleted, namespace)
	return nil
}

func (m *mockIndex) Count(_ context.Context, namespace string) (int, error) {
	return len(m.upserted[namespace]), nil
}

func (m *mockIndex) Close() error {
	return nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore map[string]string

func (m mockPromptStore) Load(name string) (string, error) {
	if p, ok := m[name]; ok {
		return p, nil
	}
	return "", errors.New("unknown prompt")
}

func (m mockPromptStore) Reload() {}

// mockChain implements driving.ChainService for testing.
type mockChain struct {
	queries []domain.Query
	answer  *domain.Answer
	err     error
}

func (m *mockChain) Ask(_ context.Context, q domain.Query) (*domain.Answer, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func scored(id string, score float64, text string) domain.Match {
	return domain.Match{ID: id, Score: score, Scored: true, Metadata: domain.EntryMetadata{Text: text}}
}
