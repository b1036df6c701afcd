package domain

// Document is a loaded source document.
// It is created at load time, never modified, and discarded after chunking.
type Document struct {
	// ID identifies the document. Loaders derive it from the URI so that
	// reloading the same file yields the same ID.
	ID string

	// URI is the original location (file path, URL, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	Content string

	// Metadata contains loader-specific key-value pairs.
	Metadata map[string]any
}

// Chunk is a bounded text window cut from a Document.
type Chunk struct {
	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text of this window.
	Content string

	// Position is the ordinal position within the document, starting at 0.
	Position int
}

// Len returns the chunk length in characters (code points).
func (c Chunk) Len() int {
	return len([]rune(c.Content))
}

// EntryMetadata is stored next to every vector.
type EntryMetadata struct {
	// Text is the chunk text. Retrieval builds its context from this field.
	Text string `json:"text"`

	// DocumentID is the ID of the document the chunk came from.
	DocumentID string `json:"document_id,omitempty"`

	// Source is the document URI.
	Source string `json:"source,omitempty"`
}

// IndexEntry is one vector stored in a namespace of a vector index.
type IndexEntry struct {
	// ID is deterministic: see EntryID.
	ID string

	// Vector is the chunk embedding.
	Vector []float32

	// Metadata carries the chunk text.
	Metadata EntryMetadata
}

// Match is a similarity hit returned by a vector index query.
type Match struct {
	// ID is the matched entry ID.
	ID string `json:"id"`

	// Score is the backend similarity score. Higher is more similar.
	Score float64 `json:"score"`

	// Scored is false when the backend returned no score for the hit.
	Scored bool `json:"scored"`

	// Metadata is the stored entry metadata.
	Metadata EntryMetadata `json:"metadata"`
}

// IngestRequest describes one ingestion run.
type IngestRequest struct {
	// Namespace is the raw namespace name; it is normalised before use.
	Namespace string

	// UserEmail scopes the namespace record kept by the outer layers.
	UserEmail string

	// ChunkSize overrides the configured chunk size when non-nil.
	ChunkSize *int

	// Overlap overrides the configured overlap when non-nil.
	Overlap *int
}

// IngestResult reports the counts of a successful ingestion.
type IngestResult struct {
	Namespace          string `json:"namespace"`
	DocumentsProcessed int    `json:"documents_processed"`
	ChunksCreated      int    `json:"chunks_created"`
	VectorsUpserted    int    `json:"vectors_upserted"`
}
