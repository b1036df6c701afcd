package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

const page = `<!DOCTYPE html>
<html>
<head>
  <title>Install &amp; Setup</title>
  <style>body { color: red; }</style>
</head>
<body>
  <nav>Home</nav>
  <h1>Installing</h1>
  <p>Run the <b>installer</b>.</p>
  <script>alert("x")</script>
  <!-- hidden note -->
  <ul><li>Step one</li><li>Step&nbsp;two</li></ul>
</body>
</html>`

func TestNormaliser_Metadata(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
	assert.Contains(t, New().SupportedMIMETypes(), "text/html")
}

func TestNormalise(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:      "/site/install.html",
		MIMEType: "text/html",
		Content:  []byte(page),
	})
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Install & Setup", doc.Title)
	assert.Equal(t, "Home\nInstalling\nRun the installer.\nStep one\nStep two", doc.Content)
	assert.Equal(t, "html", doc.Metadata["format"])
}

func TestNormalise_TitleFallback(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "/site/release-notes.html",
		Content: []byte("<p>hello</p>"),
	})
	require.NoError(t, err)

	assert.Equal(t, "release notes", result.Document.Title)
	assert.Equal(t, "hello", result.Document.Content)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "just text", "just text"},
		{"br", "a<br>b<br/>c", "a\nb\nc"},
		{"entities", "&lt;tag&gt; &quot;q&quot;", `<tag> "q"`},
		{"inline tags", "<span>a</span> <em>b</em>", "a b"},
		{"empty", "<div></div>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripHTML(tt.in))
		})
	}
}

func TestNormalise_Nil(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
