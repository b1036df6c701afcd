// Package markdown normalises Markdown files to plain text.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/normalisers/docutil"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise strips Markdown formatting. The title is the first level-one
// heading, falling back to the file name.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := strings.ReplaceAll(string(raw.Content), "\r\n", "\n")
	text = frontMatter.ReplaceAllString(text, "")

	return &driven.NormaliseResult{
		Document: docutil.NewDocument(raw, firstHeading(text), stripMarkdown(text), "markdown"),
	}, nil
}

var (
	frontMatter = regexp.MustCompile(`(?s)\A---\n.*?\n---\n`)
	codeFence   = regexp.MustCompile("(?m)^```.*$")
	inlineCode  = regexp.MustCompile("`([^`]+)`")
	images      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings    = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	bold        = regexp.MustCompile(`(\*\*|__)(\S(?:.*?\S)?)(\*\*|__)`)
	starItalic  = regexp.MustCompile(`\*(\S[^*]*?)\*`)
	underItalic = regexp.MustCompile(`(^|\W)_(\S[^_]*?)_(\W|$)`)
	blockquote  = regexp.MustCompile(`(?m)^>[ \t]?`)
	rule        = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	bullets     = regexp.MustCompile(`(?m)^([ \t]*)[-*+][ \t]+`)
	numbered    = regexp.MustCompile(`(?m)^([ \t]*)\d+\.[ \t]+`)
	htmlTags    = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
	trailingWS  = regexp.MustCompile(`(?m)[ \t]+$`)
)

// firstHeading returns the text of the first "# " heading outside code fences.
func firstHeading(text string) string {
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if !inFence && strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		}
	}
	return ""
}

// stripMarkdown keeps the readable text of a Markdown document.
// Code block contents are kept because they often answer questions;
// only the fences go.
func stripMarkdown(text string) string {
	text = codeFence.ReplaceAllString(text, "")
	text = images.ReplaceAllString(text, "$1")
	text = links.ReplaceAllString(text, "$1")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = rule.ReplaceAllString(text, "")
	text = headings.ReplaceAllString(text, "")
	text = blockquote.ReplaceAllString(text, "")
	text = bullets.ReplaceAllString(text, "$1")
	text = numbered.ReplaceAllString(text, "$1")
	text = bold.ReplaceAllString(text, "$2")
	text = starItalic.ReplaceAllString(text, "$1")
	text = underItalic.ReplaceAllString(text, "$1$2$3")
	text = htmlTags.ReplaceAllString(text, "")
	text = trailingWS.ReplaceAllString(text, "")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
