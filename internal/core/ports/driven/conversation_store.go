package driven

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// ConversationStore persists namespace ownership and chat transcripts.
type ConversationStore interface {
	// SaveNamespace records that a user owns a namespace.
	// Saving an existing record is a no-op.
	SaveNamespace(ctx context.Context, record domain.NamespaceRecord) error

	// GetNamespace returns the record for name owned by userEmail.
	// Returns domain.ErrNotFound if absent.
	GetNamespace(ctx context.Context, name, userEmail string) (*domain.NamespaceRecord, error)

	// ListNamespaces returns every namespace owned by userEmail, by name.
	ListNamespaces(ctx context.Context, userEmail string) ([]domain.NamespaceRecord, error)

	// DeleteNamespace removes the record and every message of the namespace.
	DeleteNamespace(ctx context.Context, name, userEmail string) error

	// SaveMessage appends a message to a transcript.
	SaveMessage(ctx context.Context, msg domain.Message) error

	// ListChatIDs returns the chat IDs of a namespace, most recent first.
	ListChatIDs(ctx context.Context, namespace, userEmail string) ([]string, error)

	// ListMessages returns the messages of a chat in chronological order.
	ListMessages(ctx context.Context, chatID string) ([]domain.Message, error)
}
