package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

func normalise(t *testing.T, uri, content string) domain.Document {
	t.Helper()
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:      uri,
		MIMEType: "text/markdown",
		Content:  []byte(content),
	})
	require.NoError(t, err)
	return result.Document
}

func TestNormaliser_Metadata(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
	assert.Equal(t, []string{"text/markdown", "text/x-markdown"}, New().SupportedMIMETypes())
}

func TestNormalise_TitleFromHeading(t *testing.T) {
	doc := normalise(t, "/docs/guide.md", "Intro line\n\n# Getting Started\n\nBody.")

	assert.Equal(t, "Getting Started", doc.Title)
	assert.Equal(t, "markdown", doc.Metadata["format"])
}

func TestNormalise_TitleFallsBackToFilename(t *testing.T) {
	doc := normalise(t, "/docs/install_guide.md", "## Only a subheading\n\ntext")

	assert.Equal(t, "install guide", doc.Title)
}

func TestNormalise_HeadingInsideFenceIgnored(t *testing.T) {
	doc := normalise(t, "/docs/a.md", "```sh\n# not a title\n```\n# Real")

	assert.Equal(t, "Real", doc.Title)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "## Setup", "Setup"},
		{"link", "See [the docs](https://x.dev) now", "See the docs now"},
		{"image", "![diagram](a.png)", "diagram"},
		{"emphasis", "a **bold** and _quiet_ word", "a bold and quiet word"},
		{"inline code", "run `make test`", "run make test"},
		{"fence kept content", "```go\nfmt.Println(1)\n```", "fmt.Println(1)"},
		{"bullets", "- one\n- two", "one\ntwo"},
		{"numbered", "1. one\n2. two", "one\ntwo"},
		{"quote", "> quoted", "quoted"},
		{"rule", "above\n\n---\n\nbelow", "above\n\nbelow"},
		{"html", "a<br/>b", "ab"},
		{"snake case kept", "use max_context_chars", "use max_context_chars"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdown(tt.in))
		})
	}
}

func TestNormalise_FrontMatter(t *testing.T) {
	doc := normalise(t, "/docs/post.md", "---\ntitle: x\n---\n# Post\nbody")

	assert.Equal(t, "Post", doc.Title)
	assert.Equal(t, "Post\nbody", doc.Content)
}

func TestNormalise_Nil(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
