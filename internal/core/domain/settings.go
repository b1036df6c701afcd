package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend identifies the vector index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite stores vectors in the local SQLite database.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendPostgres stores vectors in PostgreSQL with pgvector.
	IndexBackendPostgres IndexBackend = "postgres"

	// IndexBackendMemory keeps vectors in process memory only.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendPostgres, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendSQLite:
		return "SQLite (local file)"
	case IndexBackendPostgres:
		return "PostgreSQL + pgvector"
	case IndexBackendMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings controls the chunker.
type ChunkingSettings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// Overlap is the number of characters shared by consecutive chunks.
	Overlap int
}

// Validate checks the chunking invariants.
func (c ChunkingSettings) Validate() error {
	if c.ChunkSize <= 0 {
		return NewConfigError("chunk size", "must be positive")
	}
	if c.Overlap < 0 {
		return NewConfigError("overlap", "must not be negative")
	}
	if c.Overlap >= c.ChunkSize {
		return NewConfigError("overlap", "must be smaller than chunk size")
	}
	return nil
}

// RetrievalSettings controls the retriever.
type RetrievalSettings struct {
	// TopK is the number of nearest entries requested from the index.
	TopK int

	// ScoreThreshold drops matches whose score is not strictly above it.
	ScoreThreshold float64

	// MaxContextChars is the hard cap on the assembled context.
	MaxContextChars int
}

// Validate checks the retrieval parameters.
func (r RetrievalSettings) Validate() error {
	if r.TopK <= 0 {
		return NewConfigError("top k", "must be positive")
	}
	if r.MaxContextChars < 0 {
		return NewConfigError("max context chars", "must not be negative")
	}
	return nil
}

// ProviderPolicy controls timeouts, retries and rate limiting of provider calls.
type ProviderPolicy struct {
	// Timeout bounds a single provider call attempt.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt,
	// applied to transient failures only.
	MaxRetries int

	// RequestsPerSecond is the sustained request rate. Zero disables limiting.
	RequestsPerSecond float64
}

// IndexSettings selects and configures the vector index backend.
type IndexSettings struct {
	// Backend is the index implementation.
	Backend IndexBackend

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string

	// Dimensions is the vector size used when creating postgres tables.
	// Zero derives it from the embedding model.
	Dimensions int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// UserEmail scopes namespace records and transcripts.
	UserEmail string

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Chunking holds chunker settings.
	Chunking ChunkingSettings

	// Retrieval holds retriever settings.
	Retrieval RetrievalSettings

	// Provider holds the provider call policy.
	Provider ProviderPolicy

	// Index holds vector index settings.
	Index IndexSettings
}

// Default pipeline parameters.
const (
	DefaultChunkSize       = 1000
	DefaultChunkOverlap    = 200
	DefaultTopK            = 5
	DefaultScoreThreshold  = 0.1
	DefaultMaxContextChars = 3000
)

// DefaultUserEmail is used when no user is configured.
const DefaultUserEmail = "local@askdocs"

// DefaultAppSettings returns settings with sensible defaults.
// AI features (Embedding, LLM) are left unconfigured by default.
// Users must explicitly configure them via settings.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		UserEmail: DefaultUserEmail,
		// Embedding is left unconfigured - user must set it up
		Embedding: EmbeddingSettings{},
		// LLM is left unconfigured - user must set it up
		LLM: LLMSettings{
			MaxTokens:   500,
			Temperature: 0.3,
		},
		Chunking: ChunkingSettings{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK:            DefaultTopK,
			ScoreThreshold:  DefaultScoreThreshold,
			MaxContextChars: DefaultMaxContextChars,
		},
		Provider: ProviderPolicy{
			Timeout:           60 * time.Second,
			MaxRetries:        3,
			RequestsPerSecond: 5,
		},
		Index: IndexSettings{
			Backend: IndexBackendSQLite,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllIndexBackends returns all available vector index backends.
func AllIndexBackends() []IndexBackend {
	return []IndexBackend{
		IndexBackendSQLite,
		IndexBackendPostgres,
		IndexBackendMemory,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
