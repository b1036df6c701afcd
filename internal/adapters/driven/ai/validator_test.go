package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	up := newOllamaServer(t)
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(down.Close)

	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantErr  bool
	}{
		{name: "nil settings", settings: nil},
		{name: "no provider", settings: &domain.EmbeddingSettings{Model: "nomic-embed-text"}},
		{name: "openai without key", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}},
		{
			name:     "reachable ollama",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: up.URL},
		},
		{
			name:     "unhealthy ollama",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: down.URL},
			wantErr:  true,
		},
	}

	validator := NewConfigValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateEmbedding(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	up := newOllamaServer(t)

	validator := NewConfigValidator()

	assert.NoError(t, validator.ValidateLLM(nil))
	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{Model: "llama3.2"}))
	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  up.URL,
	}))
	assert.Error(t, validator.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://127.0.0.1:1",
	}))
}
