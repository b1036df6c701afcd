// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Pipeline Interfaces
//
//   - Splitter: Cuts document text into overlapping chunks
//   - Embedder / EmbeddingService: Maps texts to vectors
//   - TextGenerator / LLMService: Completes prompts
//   - VectorIndex / VectorStore: Namespaced vector storage and similarity query
//
// # Supporting Interfaces
//
//   - DocumentLoader: Reads documents from a directory
//   - Normaliser / NormaliserRegistry: Extract text from file formats
//   - ConversationStore: Namespace ownership and chat transcripts
//   - ConfigStore: Application configuration
//   - PromptStore: Editable prompt templates
//   - AIConfigValidator: Provider connectivity checks
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
