// Package postgres provides a vector index backed by PostgreSQL with pgvector.
//
// Similarity is cosine: the index orders by the pgvector `<=>` distance and
// reports 1 - distance as the score, so higher is more similar.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Table is the name of the entries table.
const Table = "askdocs_entries"

// Store is a driven.VectorStore on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to dsn and creates the schema if needed.
// A positive dimensions fixes the vector column size.
func NewStore(ctx context.Context, dsn string, dimensions int) (*Store, error) {
	if dsn == "" {
		return nil, domain.NewConfigError("index.postgres_dsn", "required for the postgres backend")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx, dimensions); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	logger.Debug("Connected to PostgreSQL vector index (dimensions=%d)", dimensions)
	return s, nil
}

// schema returns the DDL statements for the entries table.
func schema(dimensions int) []string {
	column := "vector"
	if dimensions > 0 {
		column = fmt.Sprintf("vector(%d)", dimensions)
	}
	return []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			namespace   TEXT   NOT NULL,
			id          TEXT   NOT NULL,
			seq         BIGSERIAL,
			embedding   %s     NOT NULL,
			text        TEXT   NOT NULL,
			document_id TEXT   NOT NULL DEFAULT '',
			source      TEXT   NOT NULL DEFAULT '',
			PRIMARY KEY (namespace, id)
		)`, Table, column),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_namespace_idx ON %s (namespace)", Table, Table),
	}
}

func (s *Store) migrate(ctx context.Context, dimensions int) error {
	for _, stmt := range schema(dimensions) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Upsert writes the batch in one transaction.
func (s *Store) Upsert(ctx context.Context, namespace string, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	query := fmt.Sprintf(`
		INSERT INTO %s (namespace, id, embedding, text, document_id, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (namespace, id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			text = EXCLUDED.text,
			document_id = EXCLUDED.document_id,
			source = EXCLUDED.source`, Table)
	for _, e := range entries {
		batch.Queue(query, namespace, e.ID, pgvector.NewVector(e.Vector),
			e.Metadata.Text, e.Metadata.DocumentID, e.Metadata.Source)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting entries: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query returns the topK nearest entries by cosine distance.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, text, document_id, source, 1 - (embedding <=> $2) AS score
		FROM %s
		WHERE namespace = $1
		ORDER BY embedding <=> $2, seq
		LIMIT $3`, Table),
		namespace, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		m := domain.Match{Scored: true}
		if err := rows.Scan(&m.ID, &m.Metadata.Text, &m.Metadata.DocumentID, &m.Metadata.Source, &m.Score); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return matches, nil
}

// DeleteNamespace removes every entry of namespace.
func (s *Store) DeleteNamespace(ctx context.Context, namespace string) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE namespace = $1", Table), namespace); err != nil {
		return fmt.Errorf("deleting namespace: %w", err)
	}
	return nil
}

// Count returns the number of entries in namespace.
func (s *Store) Count(ctx context.Context, namespace string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE namespace = $1", Table), namespace).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
