package mcp

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// mockConversationService is a mock implementation of driving.ConversationService.
type mockConversationService struct {
	resp    *domain.ChatResponse
	err     error
	lastReq domain.ChatRequest
}

func (m *mockConversationService) Send(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.lastReq = req
	return m.resp, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result  *domain.IngestResult
	err     error
	lastReq domain.IngestRequest
	docs    []domain.Document
}

func (m *mockIngestService) Ingest(
	_ context.Context, req domain.IngestRequest, docs []domain.Document,
) (*domain.IngestResult, error) {
	m.lastReq = req
	m.docs = docs
	return m.result, m.err
}

// mockLoader is a mock implementation of driven.DocumentLoader.
type mockLoader struct {
	docs     []domain.Document
	err      error
	lastRoot string
}

func (m *mockLoader) Load(_ context.Context, root string) ([]domain.Document, error) {
	m.lastRoot = root
	return m.docs, m.err
}

func (m *mockLoader) Watch(_ context.Context, _ string) (<-chan domain.DocumentChange, error) {
	return nil, m.err
}

// mockNamespaceService is a mock implementation of driving.NamespaceService.
type mockNamespaceService struct {
	records   []domain.NamespaceRecord
	err       error
	lastEmail string
}

func (m *mockNamespaceService) List(_ context.Context, userEmail string) ([]domain.NamespaceRecord, error) {
	m.lastEmail = userEmail
	return m.records, m.err
}

func (m *mockNamespaceService) Delete(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockNamespaceService) Chats(_ context.Context, _, _ string) ([]string, error) {
	return nil, m.err
}

func (m *mockNamespaceService) Messages(_ context.Context, _ string) ([]domain.Message, error) {
	return nil, m.err
}

func (m *mockNamespaceService) EntryCount(_ context.Context, _ string) (int, error) {
	return 0, m.err
}
