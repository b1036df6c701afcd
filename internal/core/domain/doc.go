// Package domain defines the core business entities for askdocs.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A loaded document, input to ingestion
//   - Chunk: A bounded text window cut from a document
//   - IndexEntry: A chunk's vector plus metadata as stored in a vector index
//   - Match: A similarity hit returned by a vector index
//   - ConversationTurn: One line of dialogue history
//   - NamespaceRecord / Message: Conversation data kept by the outer layers
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
