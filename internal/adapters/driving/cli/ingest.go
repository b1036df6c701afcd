package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/logger"
)

var (
	ingestNamespace string
	ingestChunkSize int
	ingestOverlap   int
	ingestWatch     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Ingest documents into a namespace",
	Long: `Loads every supported file under a directory (or a single file), splits
the text into overlapping chunks, embeds them and stores the vectors in the
namespace. Hidden files and paths matched by .gitignore or .askdocsignore are
skipped.

Re-ingesting into the same namespace overwrites entries with the same IDs.

With --watch the command keeps running and re-ingests after files change.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestNamespace, "namespace", "n", "", "namespace to write into (required)")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "maximum chunk length in characters (default from settings)")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", 0, "characters shared by consecutive chunks (default from settings)")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest when files change")
	_ = ingestCmd.MarkFlagRequired("namespace")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured. Run 'askdocs settings embedding' first")
	}
	if documentLoader == nil {
		return errors.New("document loader not configured")
	}

	root := args[0]
	req := domain.IngestRequest{
		Namespace: ingestNamespace,
		UserEmail: userEmail,
	}
	if cmd.Flags().Changed("chunk-size") {
		size := ingestChunkSize
		req.ChunkSize = &size
	}
	if cmd.Flags().Changed("overlap") {
		overlap := ingestOverlap
		req.Overlap = &overlap
	}

	ctx := commandContext(cmd)
	result, err := ingestPath(ctx, root, req)
	if err != nil {
		return err
	}
	printIngestResult(cmd, result)

	if !ingestWatch {
		return nil
	}
	return watchAndIngest(ctx, cmd, root, req)
}

func ingestPath(ctx context.Context, root string, req domain.IngestRequest) (*domain.IngestResult, error) {
	docs, err := documentLoader.Load(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", root, err)
	}
	logger.Debug("Loaded %d documents from %s", len(docs), root)

	result, err := ingestService.Ingest(ctx, req, docs)
	if err != nil {
		return nil, fmt.Errorf("ingesting %s: %w", root, err)
	}
	return result, nil
}

func printIngestResult(cmd *cobra.Command, result *domain.IngestResult) {
	cmd.Printf("Ingested %d documents into %q\n", result.DocumentsProcessed, result.Namespace)
	cmd.Printf("  Chunks:  %d\n", result.ChunksCreated)
	cmd.Printf("  Vectors: %d\n", result.VectorsUpserted)
}

// watchAndIngest re-ingests root after every batch of changes until ctx ends.
// Changes that arrive while a run is in progress are folded into the next run.
func watchAndIngest(ctx context.Context, cmd *cobra.Command, root string, req domain.IngestRequest) error {
	changes, err := documentLoader.Watch(ctx, root)
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", root)

	for {
		var batch []domain.DocumentChange
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			batch = append(batch, change)
		}
		batch = drainChanges(changes, batch)

		for _, c := range batch {
			logger.Debug("Change: %s %s", c.Type, c.URI)
		}
		cmd.Printf("%d files changed, re-ingesting\n", len(batch))

		result, err := ingestPath(ctx, root, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			cmd.PrintErrf("Re-ingest failed: %v\n", err)
			continue
		}
		printIngestResult(cmd, result)
	}
}

// drainChanges appends every change already buffered in changes.
func drainChanges(changes <-chan domain.DocumentChange, batch []domain.DocumentChange) []domain.DocumentChange {
	for {
		select {
		case change, ok := <-changes:
			if !ok {
				return batch
			}
			batch = append(batch, change)
		default:
			return batch
		}
	}
}
