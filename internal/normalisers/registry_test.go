package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

type stubNormaliser struct {
	mimes    []string
	priority int
	content  string
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mimes }
func (s *stubNormaliser) Priority() int                { return s.priority }

func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Document: domain.Document{URI: raw.URI, Content: s.content}}, nil
}

func TestRegistry_PriorityWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{mimes: []string{"text/x"}, priority: 5, content: "fallback"})
	r.Register(&stubNormaliser{mimes: []string{"text/x"}, priority: 50, content: "specific"})

	result, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "a", MIMEType: "text/x"})

	require.NoError(t, err)
	assert.Equal(t, "specific", result.Document.Content)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry()

	_, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "image/png"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	types := r.SupportedMIMETypes()

	for _, mime := range []string{"text/plain", "text/markdown", "text/html", "application/json", "message/rfc822"} {
		assert.Contains(t, types, mime)
	}

	result, err := r.Normalise(context.Background(), &domain.RawDocument{
		URI:      "/docs/readme.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Readme\n\n**Hello**"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Readme", result.Document.Title)
	assert.Equal(t, "Readme\n\nHello", result.Document.Content)
}
