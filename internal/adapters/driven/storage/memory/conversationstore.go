package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore is an in-memory implementation of driven.ConversationStore.
type ConversationStore struct {
	mu         sync.RWMutex
	namespaces map[nsKey]domain.NamespaceRecord
	messages   []domain.Message
}

type nsKey struct {
	name  string
	email string
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		namespaces: make(map[nsKey]domain.NamespaceRecord),
	}
}

// SaveNamespace records namespace ownership. Existing records are kept.
func (s *ConversationStore) SaveNamespace(_ context.Context, record domain.NamespaceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := nsKey{record.Name, record.UserEmail}
	if _, ok := s.namespaces[key]; !ok {
		s.namespaces[key] = record
	}
	return nil
}

// GetNamespace retrieves a namespace record.
func (s *ConversationStore) GetNamespace(_ context.Context, name, userEmail string) (*domain.NamespaceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.namespaces[nsKey{name, userEmail}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// ListNamespaces returns the records owned by userEmail, sorted by name.
func (s *ConversationStore) ListNamespaces(_ context.Context, userEmail string) ([]domain.NamespaceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []domain.NamespaceRecord
	for key, record := range s.namespaces {
		if key.email == userEmail {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records, nil
}

// DeleteNamespace removes the record and its messages.
func (s *ConversationStore) DeleteNamespace(_ context.Context, name, userEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, nsKey{name, userEmail})

	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.Namespace != name || m.UserEmail != userEmail {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	return nil
}

// SaveMessage appends a message.
func (s *ConversationStore) SaveMessage(_ context.Context, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

// ListChatIDs returns distinct chat IDs, most recently active first.
func (s *ConversationStore) ListChatIDs(_ context.Context, namespace, userEmail string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var ids []string
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.Namespace != namespace || m.UserEmail != userEmail || seen[m.ChatID] {
			continue
		}
		seen[m.ChatID] = true
		ids = append(ids, m.ChatID)
	}
	return ids, nil
}

// ListMessages returns the messages of a chat in insertion order.
func (s *ConversationStore) ListMessages(_ context.Context, chatID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var msgs []domain.Message
	for _, m := range s.messages {
		if m.ChatID == chatID {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}
