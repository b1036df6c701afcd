// Package docutil holds the document construction shared by normalisers.
package docutil

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// DocumentID derives a stable document ID from its URI, so reloading the
// same file yields the same ID.
func DocumentID(uri string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(uri)).String()
}

// TitleFromURI turns a file name into a readable title:
// "getting_started-guide.md" becomes "getting started guide".
func TitleFromURI(uri string) string {
	name := filepath.Base(uri)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

// NewDocument builds a normalised document from raw.
// The raw metadata is copied and annotated with the MIME type and,
// when non-empty, the source format.
func NewDocument(raw *domain.RawDocument, title, content, format string) domain.Document {
	meta := make(map[string]any, len(raw.Metadata)+2)
	for k, v := range raw.Metadata {
		meta[k] = v
	}
	meta["mime_type"] = raw.MIMEType
	if format != "" {
		meta["format"] = format
	}

	if title == "" {
		title = TitleFromURI(raw.URI)
	}

	return domain.Document{
		ID:       DocumentID(raw.URI),
		URI:      raw.URI,
		Title:    title,
		Content:  content,
		Metadata: meta,
	}
}
