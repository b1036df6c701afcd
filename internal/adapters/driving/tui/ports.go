// Package tui provides an interactive terminal chat for askdocs.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Conversation answers questions and records the transcript.
	Conversation driving.ConversationService

	// Namespace reads stored transcripts when a chat is resumed. Optional.
	Namespace driving.NamespaceService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Conversation == nil {
		return ErrMissingConversationService
	}
	return nil
}
