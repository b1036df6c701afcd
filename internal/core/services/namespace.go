package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure NamespaceService implements the interface.
var _ driving.NamespaceService = (*NamespaceService)(nil)

// NamespaceService manages namespace records, their vectors and transcripts.
type NamespaceService struct {
	store driven.ConversationStore
	index driven.NamespaceAdmin
}

// NewNamespaceService creates a new namespace service.
// The index may be nil, in which case vectors are left untouched.
func NewNamespaceService(store driven.ConversationStore, index driven.NamespaceAdmin) *NamespaceService {
	return &NamespaceService{store: store, index: index}
}

// List returns the namespaces owned by userEmail.
func (s *NamespaceService) List(ctx context.Context, userEmail string) ([]domain.NamespaceRecord, error) {
	records, err := s.store.ListNamespaces(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	return records, nil
}

// Delete removes the namespace record, its index entries and its messages.
func (s *NamespaceService) Delete(ctx context.Context, name, userEmail string) error {
	namespace := domain.NormalizeNamespace(name)
	if _, err := s.store.GetNamespace(ctx, namespace, userEmail); err != nil {
		return fmt.Errorf("namespace %q: %w", namespace, err)
	}

	if s.index != nil {
		if err := s.index.DeleteNamespace(ctx, namespace); err != nil {
			return fmt.Errorf("delete vectors: %w", err)
		}
	}
	if err := s.store.DeleteNamespace(ctx, namespace, userEmail); err != nil {
		return fmt.Errorf("delete namespace record: %w", err)
	}
	logger.Info("Deleted namespace %q", namespace)
	return nil
}

// Chats returns the chat IDs of a namespace, most recent first.
func (s *NamespaceService) Chats(ctx context.Context, name, userEmail string) ([]string, error) {
	namespace := domain.NormalizeNamespace(name)
	if _, err := s.store.GetNamespace(ctx, namespace, userEmail); err != nil {
		return nil, fmt.Errorf("namespace %q: %w", namespace, err)
	}
	ids, err := s.store.ListChatIDs(ctx, namespace, userEmail)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return ids, nil
}

// Messages returns the transcript of a chat.
func (s *NamespaceService) Messages(ctx context.Context, chatID string) ([]domain.Message, error) {
	msgs, err := s.store.ListMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	return msgs, nil
}

// EntryCount returns the number of vectors stored for a namespace.
func (s *NamespaceService) EntryCount(ctx context.Context, name string) (int, error) {
	if s.index == nil {
		return 0, domain.ErrVectorIndexUnavailable
	}
	n, err := s.index.Count(ctx, domain.NormalizeNamespace(name))
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}
