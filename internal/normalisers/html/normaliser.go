package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/normalisers/docutil"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the visible text of an HTML page.
// The title comes from <title>, falling back to the file name.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	page := string(raw.Content)
	return &driven.NormaliseResult{
		Document: docutil.NewDocument(raw, pageTitle(page), stripHTML(page), "html"),
	}, nil
}

var (
	titleTag    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	invisible   = regexp.MustCompile(`(?is)<(script|style|noscript|head|svg|template)\b[^>]*>.*?</(script|style|noscript|head|svg|template)>`)
	comments    = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockBreaks = regexp.MustCompile(`(?i)</?(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article|header|footer|main|nav)(\s[^>]*)?/?>`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	spaceRuns   = regexp.MustCompile(`[ \t\x{00a0}]+`)
	newlineRuns = regexp.MustCompile(`\n{2,}`)
)

func pageTitle(page string) string {
	m := titleTag.FindStringSubmatch(page)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(spaceRuns.ReplaceAllString(html.UnescapeString(m[1]), " "))
}

// Text returns the visible text of an HTML fragment, one line per block.
func Text(page string) string {
	return stripHTML(page)
}

// stripHTML removes markup and returns one line per block of text.
func stripHTML(page string) string {
	page = invisible.ReplaceAllString(page, "")
	page = comments.ReplaceAllString(page, "")
	page = blockBreaks.ReplaceAllString(page, "\n")
	page = anyTag.ReplaceAllString(page, "")
	page = html.UnescapeString(page)
	page = spaceRuns.ReplaceAllString(page, " ")

	lines := strings.Split(page, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return newlineRuns.ReplaceAllString(strings.Join(kept, "\n"), "\n")
}
