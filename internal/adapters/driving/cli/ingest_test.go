package cli

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest <path>", ingestCmd.Use)
}

func TestIngestCmd_Flags(t *testing.T) {
	ns := ingestCmd.Flags().Lookup("namespace")
	require.NotNil(t, ns)
	assert.Equal(t, "n", ns.Shorthand)

	for _, name := range []string{"chunk-size", "overlap", "watch"} {
		assert.NotNil(t, ingestCmd.Flags().Lookup(name), name)
	}
}

func TestIngestCmd_RequiresPath(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest", "--namespace", "docs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestIngestCmd_RequiresNamespace(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest", "./docs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "namespace")
}

func TestIngestCmd_NotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := executeCommand("ingest", "./docs", "--namespace", "docs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}

func TestIngestCmd_Ingests(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("ingest", "./docs", "--namespace", "docs")

	require.NoError(t, err)
	assert.Contains(t, out, `Ingested 2 documents into "docs"`)
	assert.Contains(t, out, "Vectors: 2")
	assert.Equal(t, []string{"./docs"}, ts.Loader.Roots)

	require.Len(t, ts.Ingest.Requests, 1)
	req := ts.Ingest.Requests[0]
	assert.Equal(t, "docs", req.Namespace)
	assert.Equal(t, "tester@example.com", req.UserEmail)
	assert.Nil(t, req.ChunkSize)
	assert.Nil(t, req.Overlap, "overlap comes from settings unless the flag is given")
}

func TestIngestCmd_ChunkFlags(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest", "./docs", "-n", "docs", "--chunk-size", "500", "--overlap", "0")

	require.NoError(t, err)
	require.Len(t, ts.Ingest.Requests, 1)
	req := ts.Ingest.Requests[0]
	require.NotNil(t, req.ChunkSize)
	assert.Equal(t, 500, *req.ChunkSize)
	require.NotNil(t, req.Overlap)
	assert.Equal(t, 0, *req.Overlap)
}

func TestIngestCmd_NegativeChunkSizeIsPassedThrough(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ingest", "./docs", "-n", "docs", "--chunk-size=-5")

	require.NoError(t, err)
	require.Len(t, ts.Ingest.Requests, 1)
	require.NotNil(t, ts.Ingest.Requests[0].ChunkSize, "an explicit flag reaches the service for validation")
	assert.Equal(t, -5, *ts.Ingest.Requests[0].ChunkSize)
}

func TestIngestCmd_NoDocuments(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.Loader.Docs = nil
	ts.Ingest.Err = domain.ErrNoDocuments

	_, err := executeCommand("ingest", "./empty", "-n", "docs")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
	assert.Contains(t, err.Error(), "no documents found in the specified directory")
}

func TestIngestCmd_LoaderError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.Loader.Err = domain.ErrInvalidInput

	_, err := executeCommand("ingest", "./missing", "-n", "docs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading ./missing")
	assert.Empty(t, ts.Ingest.Requests)
}

func TestWatchAndIngest_ReingestsPerBatch(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.Loader.Changes = make(chan domain.DocumentChange, 4)
	ts.Loader.Changes <- domain.DocumentChange{Type: domain.ChangeCreated, URI: "/docs/c.md"}
	ts.Loader.Changes <- domain.DocumentChange{Type: domain.ChangeUpdated, URI: "/docs/a.md"}

	cmd := &cobra.Command{}
	out := new(safeBuffer)
	cmd.SetOut(out)
	cmd.SetErr(out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchAndIngest(ctx, cmd, "./docs", domain.IngestRequest{Namespace: "docs"})
	}()

	require.Eventually(t, func() bool {
		return out.Contains("Ingested 2 documents")
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	assert.Contains(t, out.String(), "2 files changed, re-ingesting")
	assert.Len(t, ts.Ingest.Requests, 1, "buffered changes fold into one run")
}

func TestWatchAndIngest_StopsWhenChannelCloses(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.Loader.Changes = make(chan domain.DocumentChange)
	close(ts.Loader.Changes)

	cmd := &cobra.Command{}
	cmd.SetOut(new(safeBuffer))

	err := watchAndIngest(context.Background(), cmd, "./docs", domain.IngestRequest{Namespace: "docs"})

	assert.NoError(t, err)
	assert.Empty(t, ts.Ingest.Requests)
}

func TestDrainChanges(t *testing.T) {
	changes := make(chan domain.DocumentChange, 3)
	changes <- domain.DocumentChange{URI: "a"}
	changes <- domain.DocumentChange{URI: "b"}

	batch := drainChanges(changes, []domain.DocumentChange{{URI: "first"}})

	require.Len(t, batch, 3)
	assert.Equal(t, "first", batch[0].URI)
	assert.Equal(t, "b", batch[2].URI)
}
