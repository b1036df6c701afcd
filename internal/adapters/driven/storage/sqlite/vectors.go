package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// vectorStore implements driven.VectorStore.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// Upsert writes the batch in one transaction. Rows keep their original
// position when replaced.
func (s *vectorStore) Upsert(ctx context.Context, namespace string, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_entries (namespace, id, vector, text, document_id, source)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(namespace, id) DO UPDATE SET
			vector = excluded.vector,
			text = excluded.text,
			document_id = excluded.document_id,
			source = excluded.source
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, namespace, e.ID, float32SliceToBytes(e.Vector),
			e.Metadata.Text, e.Metadata.DocumentID, e.Metadata.Source); err != nil {
			return fmt.Errorf("saving entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query scores every entry of the namespace by cosine similarity.
func (s *vectorStore) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, vector, text, document_id, source
		FROM index_entries
		WHERE namespace = ?
		ORDER BY rowid
	`, namespace)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var candidates []vecmath.Scored[domain.Match]
	for rows.Next() {
		var (
			m    domain.Match
			blob []byte
		)
		if err := rows.Scan(&m.ID, &blob, &m.Metadata.Text, &m.Metadata.DocumentID, &m.Metadata.Source); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		candidates = append(candidates, vecmath.Scored[domain.Match]{
			Item:  m,
			Score: vecmath.Cosine(vector, bytesToFloat32Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	top := vecmath.TopK(candidates, topK)
	matches := make([]domain.Match, len(top))
	for i, c := range top {
		matches[i] = c.Item
		matches[i].Score = c.Score
		matches[i].Scored = true
	}
	return matches, nil
}

// DeleteNamespace removes every entry of namespace.
func (s *vectorStore) DeleteNamespace(ctx context.Context, namespace string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM index_entries WHERE namespace = ?", namespace); err != nil {
		return fmt.Errorf("deleting namespace: %w", err)
	}
	return nil
}

// Count returns the number of entries in namespace.
func (s *vectorStore) Count(ctx context.Context, namespace string) (int, error) {
	var n int
	row := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM index_entries WHERE namespace = ?", namespace)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Close is a no-op; the owning Store closes the database.
func (s *vectorStore) Close() error {
	return nil
}
