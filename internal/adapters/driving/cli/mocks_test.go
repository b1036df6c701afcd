package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// MockIngestService implements driving.IngestService for testing.
type MockIngestService struct {
	Result   *domain.IngestResult
	Err      error
	Requests []domain.IngestRequest
	Docs     []domain.Document
}

func (m *MockIngestService) Ingest(
	_ context.Context, req domain.IngestRequest, docs []domain.Document,
) (*domain.IngestResult, error) {
	m.Requests = append(m.Requests, req)
	m.Docs = docs
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &domain.IngestResult{
		Namespace:          domain.NormalizeNamespace(req.Namespace),
		DocumentsProcessed: len(docs),
		ChunksCreated:      len(docs),
		VectorsUpserted:    len(docs),
	}, nil
}

// MockConversationService implements driving.ConversationService for testing.
type MockConversationService struct {
	SendFunc func(req domain.ChatRequest) (*domain.ChatResponse, error)
	Requests []domain.ChatRequest
}

func (m *MockConversationService) Send(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.SendFunc != nil {
		return m.SendFunc(req)
	}
	chatID := req.ChatID
	if chatID == "" {
		chatID = "chat-1"
	}
	return &domain.ChatResponse{ChatID: chatID, Text: "answer to " + req.Question}, nil
}

// MockNamespaceService implements driving.NamespaceService for testing.
type MockNamespaceService struct {
	Records     []domain.NamespaceRecord
	Counts      map[string]int
	ChatIDs     []string
	MessageList []domain.Message
	Err         error
	Deleted     []string
}

func (m *MockNamespaceService) List(_ context.Context, _ string) ([]domain.NamespaceRecord, error) {
	return m.Records, m.Err
}

func (m *MockNamespaceService) Delete(_ context.Context, name, _ string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Deleted = append(m.Deleted, name)
	return nil
}

func (m *MockNamespaceService) Chats(_ context.Context, _, _ string) ([]string, error) {
	return m.ChatIDs, m.Err
}

func (m *MockNamespaceService) Messages(_ context.Context, _ string) ([]domain.Message, error) {
	return m.MessageList, m.Err
}

func (m *MockNamespaceService) EntryCount(_ context.Context, name string) (int, error) {
	return m.Counts[name], m.Err
}

// MockSettingsService implements driving.SettingsService for testing.
type MockSettingsService struct {
	Settings    domain.AppSettings
	SetErr      error
	ValidateErr error
	Sets        map[string]string
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.Settings
	return &s, nil
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	m.Settings = *settings
	return nil
}

func (m *MockSettingsService) Set(key, value string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.Sets == nil {
		m.Sets = map[string]string{}
	}
	m.Sets[key] = value
	return nil
}

func (m *MockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.Settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *MockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.Settings.LLM.Provider = provider
	m.Settings.LLM.Model = model
	m.Settings.LLM.APIKey = apiKey
	return nil
}

func (m *MockSettingsService) Validate() error {
	return m.ValidateErr
}

func (m *MockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *MockSettingsService) ValidateEmbeddingConfig() error {
	return m.ValidateErr
}

func (m *MockSettingsService) ValidateLLMConfig() error {
	return m.ValidateErr
}

// MockLoader implements driven.DocumentLoader for testing.
type MockLoader struct {
	Docs    []domain.Document
	Err     error
	Changes chan domain.DocumentChange
	Roots   []string
}

func (m *MockLoader) Load(_ context.Context, root string) ([]domain.Document, error) {
	m.Roots = append(m.Roots, root)
	return m.Docs, m.Err
}

func (m *MockLoader) Watch(_ context.Context, _ string) (<-chan domain.DocumentChange, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Changes, nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	Ingest       *MockIngestService
	Conversation *MockConversationService
	Namespace    *MockNamespaceService
	Settings     *MockSettingsService
	Loader       *MockLoader
}

// setupTestServices installs fresh mocks and returns them with a cleanup func.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		Ingest:       &MockIngestService{},
		Conversation: &MockConversationService{},
		Namespace:    &MockNamespaceService{},
		Settings:     &MockSettingsService{Settings: domain.DefaultAppSettings()},
		Loader: &MockLoader{Docs: []domain.Document{
			{ID: "d1", URI: "/docs/a.md", Content: "alpha"},
			{ID: "d2", URI: "/docs/b.md", Content: "beta"},
		}},
	}
	SetServices(&Services{
		Ingest:       ts.Ingest,
		Conversation: ts.Conversation,
		Namespace:    ts.Namespace,
		Settings:     ts.Settings,
		Loader:       ts.Loader,
		UserEmail:    "tester@example.com",
	})
	return ts, func() { SetServices(nil) }
}

// executeCommand runs rootCmd with args and returns everything it printed.
// Flags are reset first so values do not leak between tests.
func executeCommand(args ...string) (string, error) {
	return executeCommandWithInput("", args...)
}

func executeCommandWithInput(input string, args ...string) (string, error) {
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// safeBuffer is a bytes.Buffer that can be written and read concurrently.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *safeBuffer) Contains(s string) bool {
	return strings.Contains(b.String(), s)
}
