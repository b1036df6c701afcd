package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/pipeline"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// sourcedChunk is a chunk together with the URI of its document.
type sourcedChunk struct {
	chunk  domain.Chunk
	source string
}

// IngestService runs chunk, embed and upsert for one namespace.
type IngestService struct {
	splitter      driven.Splitter
	embedder      driven.Embedder
	index         driven.VectorIndex
	conversations driven.ConversationStore
	chunking      domain.ChunkingSettings
	now           func() time.Time
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	splitter driven.Splitter,
	embedder driven.Embedder,
	index driven.VectorIndex,
	chunking domain.ChunkingSettings,
) *IngestService {
	return &IngestService{
		splitter: splitter,
		embedder: embedder,
		index:    index,
		chunking: chunking,
		now:      time.Now,
	}
}

// SetConversationStore enables namespace records after successful ingestion.
func (s *IngestService) SetConversationStore(store driven.ConversationStore) {
	s.conversations = store
}

// Ingest chunks docs, embeds every chunk in one batch and upserts the
// entries into the normalised namespace. Entry IDs are
// "{namespace}-{sequenceIndex}" with the index running across all documents.
func (s *IngestService) Ingest(
	ctx context.Context, req domain.IngestRequest, docs []domain.Document,
) (*domain.IngestResult, error) {
	logger.Section("Ingest")

	if len(docs) == 0 {
		return nil, domain.ErrNoDocuments
	}

	chunking := s.chunking
	if req.ChunkSize != nil {
		chunking.ChunkSize = *req.ChunkSize
	}
	if req.Overlap != nil {
		chunking.Overlap = *req.Overlap
	}
	if err := chunking.Validate(); err != nil {
		return nil, err
	}

	namespace := domain.NormalizeNamespace(req.Namespace)
	if namespace == "" {
		return nil, fmt.Errorf("%w: namespace %q is empty after normalisation", domain.ErrInvalidInput, req.Namespace)
	}
	if s.splitter == nil {
		return nil, fmt.Errorf("%w: no splitter configured", domain.ErrConfig)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	logger.Debug("Namespace: %q, documents: %d, chunk size: %d, overlap: %d",
		namespace, len(docs), chunking.ChunkSize, chunking.Overlap)

	run := pipeline.Then(pipeline.Then(
		s.chunkStage(chunking),
		s.embedStage(namespace)),
		s.upsertStage(namespace),
	)

	upserted, err := pipeline.Run(ctx, run, docs)
	if err != nil {
		logger.Warn("Ingestion into %q failed: %v", namespace, err)
		return nil, fmt.Errorf("ingest %s: %w", namespace, err)
	}

	if s.conversations != nil && req.UserEmail != "" {
		record := domain.NamespaceRecord{Name: namespace, UserEmail: req.UserEmail, CreatedAt: s.now()}
		if err := s.conversations.SaveNamespace(ctx, record); err != nil {
			return nil, fmt.Errorf("save namespace record: %w", err)
		}
	}

	result := &domain.IngestResult{
		Namespace:          namespace,
		DocumentsProcessed: len(docs),
		ChunksCreated:      upserted,
		VectorsUpserted:    upserted,
	}
	logger.Info("Ingested %d documents into %q (%d vectors)", result.DocumentsProcessed, namespace, upserted)
	return result, nil
}

func (s *IngestService) chunkStage(
	chunking domain.ChunkingSettings,
) pipeline.Stage[[]domain.Document, []sourcedChunk] {
	return pipeline.NewStage("chunk", func(_ context.Context, docs []domain.Document) ([]sourcedChunk, error) {
		var out []sourcedChunk
		for _, doc := range docs {
			chunks, err := s.splitter.Split(doc.Content, chunking.ChunkSize, chunking.Overlap)
			if err != nil {
				return nil, fmt.Errorf("split %s: %w", doc.URI, err)
			}
			for _, ch := range chunks {
				ch.DocumentID = doc.ID
				out = append(out, sourcedChunk{chunk: ch, source: doc.URI})
			}
		}
		if len(out) == 0 {
			return nil, domain.ErrEmptyChunkSet
		}
		logger.Debug("Chunks: %d", len(out))
		return out, nil
	})
}

func (s *IngestService) embedStage(namespace string) pipeline.Stage[[]sourcedChunk, []domain.IndexEntry] {
	return pipeline.NewStage("embed", func(ctx context.Context, chunks []sourcedChunk) ([]domain.IndexEntry, error) {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.chunk.Content
		}

		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, domain.AsProviderError("embedding", "embed", err)
		}
		if len(vectors) != len(chunks) {
			return nil, &domain.EmbeddingCountMismatchError{Expected: len(chunks), Got: len(vectors)}
		}

		entries := make([]domain.IndexEntry, len(chunks))
		for i, c := range chunks {
			entries[i] = domain.IndexEntry{
				ID:     domain.EntryID(namespace, i),
				Vector: vectors[i],
				Metadata: domain.EntryMetadata{
					Text:       c.chunk.Content,
					DocumentID: c.chunk.DocumentID,
					Source:     c.source,
				},
			}
		}
		return entries, nil
	})
}

func (s *IngestService) upsertStage(namespace string) pipeline.Stage[[]domain.IndexEntry, int] {
	return pipeline.NewStage("upsert", func(ctx context.Context, entries []domain.IndexEntry) (int, error) {
		if err := s.index.Upsert(ctx, namespace, entries); err != nil {
			return 0, domain.AsProviderError("index", "upsert", err)
		}
		return len(entries), nil
	})
}
