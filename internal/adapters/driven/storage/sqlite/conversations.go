package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// conversationStore implements driven.ConversationStore.
type conversationStore struct {
	store *Store
}

var _ driven.ConversationStore = (*conversationStore)(nil)

// SaveNamespace records ownership. Existing records are left untouched.
func (s *conversationStore) SaveNamespace(ctx context.Context, record domain.NamespaceRecord) error {
	created := record.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO namespaces (name, user_email, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name, user_email) DO NOTHING
	`, record.Name, record.UserEmail, created.UnixNano())
	if err != nil {
		return fmt.Errorf("saving namespace: %w", err)
	}
	return nil
}

// GetNamespace retrieves a namespace record.
func (s *conversationStore) GetNamespace(ctx context.Context, name, userEmail string) (*domain.NamespaceRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT name, user_email, created_at FROM namespaces
		WHERE name = ? AND user_email = ?
	`, name, userEmail)

	record, err := scanNamespace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting namespace: %w", err)
	}
	return record, nil
}

// ListNamespaces returns the records owned by userEmail, sorted by name.
func (s *conversationStore) ListNamespaces(ctx context.Context, userEmail string) ([]domain.NamespaceRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name, user_email, created_at FROM namespaces
		WHERE user_email = ?
		ORDER BY name
	`, userEmail)
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}
	defer rows.Close()

	var records []domain.NamespaceRecord
	for rows.Next() {
		record, err := scanNamespace(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning namespace: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// DeleteNamespace removes the record and its messages in one transaction.
func (s *conversationStore) DeleteNamespace(ctx context.Context, name, userEmail string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM messages WHERE namespace = ? AND user_email = ?", name, userEmail); err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM namespaces WHERE name = ? AND user_email = ?", name, userEmail); err != nil {
		return fmt.Errorf("deleting namespace: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SaveMessage appends a message.
func (s *conversationStore) SaveMessage(ctx context.Context, msg domain.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO messages (id, chat_id, namespace, user_email, sender, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.ChatID, msg.Namespace, msg.UserEmail, string(msg.Sender), msg.Content, msg.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving message: %w", err)
	}
	return nil
}

// ListChatIDs returns distinct chat IDs, most recently active first.
func (s *conversationStore) ListChatIDs(ctx context.Context, namespace, userEmail string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT chat_id FROM messages
		WHERE namespace = ? AND user_email = ?
		GROUP BY chat_id
		ORDER BY MAX(rowid) DESC
	`, namespace, userEmail)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning chat id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListMessages returns the messages of a chat in insertion order.
func (s *conversationStore) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, chat_id, namespace, user_email, sender, content, created_at
		FROM messages
		WHERE chat_id = ?
		ORDER BY rowid
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var (
			m       domain.Message
			sender  string
			created int64
		)
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Namespace, &m.UserEmail, &sender, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Sender = domain.Sender(sender)
		m.CreatedAt = time.Unix(0, created).UTC()
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNamespace(row rowScanner) (*domain.NamespaceRecord, error) {
	var (
		record  domain.NamespaceRecord
		created int64
	)
	if err := row.Scan(&record.Name, &record.UserEmail, &created); err != nil {
		return nil, err
	}
	record.CreatedAt = time.Unix(0, created).UTC()
	return &record, nil
}
