package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_Len(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"ascii", "hello", 5},
		{"multibyte", "héllo", 5},
		{"emoji", "a😀b", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk{Content: tt.content}.Len())
		})
	}
}

func TestEntryMetadata_JSON(t *testing.T) {
	meta := EntryMetadata{Text: "chunk body"}

	data, err := json.Marshal(meta)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"chunk body"}`, string(data))
}

func TestIngestResult_JSON(t *testing.T) {
	res := IngestResult{Namespace: "docs", DocumentsProcessed: 2, ChunksCreated: 3, VectorsUpserted: 3}

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"namespace":"docs","documents_processed":2,"chunks_created":3,"vectors_upserted":3}`,
		string(data))
}

func TestNormalizeNamespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii unchanged", "docs", "docs"},
		{"accent stripped", "café", "caf"},
		{"spaces kept", " My Docs ", " My Docs "},
		{"case kept", "Docs", "Docs"},
		{"only non-ascii", "日本語", ""},
		{"mixed", "rés-umé 2", "rs-um 2"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNamespace(tt.in))
		})
	}
}

func TestNormalizeNamespace_Collision(t *testing.T) {
	assert.Equal(t, NormalizeNamespace("café"), NormalizeNamespace("cafè"))
}

func TestEntryID(t *testing.T) {
	assert.Equal(t, "docs-0", EntryID("docs", 0))
	assert.Equal(t, "docs-12", EntryID("docs", 12))
	assert.Equal(t, "-3", EntryID("", 3))
}
