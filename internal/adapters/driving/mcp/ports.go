package mcp

import (
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
)

// Ports aggregates the services exposed by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Conversation answers questions and records transcripts.
	Conversation driving.ConversationService

	// Ingest builds namespaces. Optional; the ingest tool fails without it.
	Ingest driving.IngestService

	// Loader reads directories for the ingest tool.
	Loader driven.DocumentLoader

	// Namespace lists ingested namespaces. Optional.
	Namespace driving.NamespaceService

	// UserEmail scopes namespaces and transcripts.
	UserEmail string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Conversation == nil {
		return ErrMissingConversationService
	}
	if p.Ingest != nil && p.Loader == nil {
		return ErrMissingLoader
	}
	return nil
}

func (p *Ports) userEmail() string {
	if p.UserEmail == "" {
		return domain.DefaultUserEmail
	}
	return p.UserEmail
}
