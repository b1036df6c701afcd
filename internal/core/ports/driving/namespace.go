package driving

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// NamespaceService manages ingested namespaces.
type NamespaceService interface {
	// List returns the namespaces owned by userEmail.
	List(ctx context.Context, userEmail string) ([]domain.NamespaceRecord, error)

	// Delete removes a namespace with its vectors and transcripts.
	Delete(ctx context.Context, name, userEmail string) error

	// Chats returns the chat IDs recorded for a namespace.
	Chats(ctx context.Context, name, userEmail string) ([]string, error)

	// Messages returns the transcript of a chat in chronological order.
	Messages(ctx context.Context, chatID string) ([]domain.Message, error)

	// EntryCount returns the number of vectors stored for a namespace.
	EntryCount(ctx context.Context, name string) (int, error)
}
