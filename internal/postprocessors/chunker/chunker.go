// Package chunker splits document text into bounded, overlapping chunks.
package chunker

import (
	"strings"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Splitter = (*Chunker)(nil)

// DefaultSeparators are tried in order when choosing where a chunk ends:
// paragraphs, lines, sentences, then words.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// Chunker cuts text on the most significant boundary that fits the window.
// Lengths are counted in code points.
type Chunker struct {
	separators [][]rune
}

// Option configures the chunker.
type Option func(*Chunker)

// WithSeparators replaces the boundary preference list.
// An empty list makes every cut a hard cut.
func WithSeparators(seps ...string) Option {
	return func(c *Chunker) {
		c.separators = toRunes(seps)
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{separators: toRunes(DefaultSeparators)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Split cuts text into chunks of at most chunkSize characters. Each chunk
// after the first starts with the last overlap characters of its predecessor.
func (c *Chunker) Split(text string, chunkSize, overlap int) ([]domain.Chunk, error) {
	if err := (domain.ChunkingSettings{ChunkSize: chunkSize, Overlap: overlap}).Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	runes := []rune(text)
	n := len(runes)
	chunks := make([]domain.Chunk, 0, n/(chunkSize-overlap)+1)

	// A boundary is only taken in the second half of the window and past the
	// overlap, so every step advances by at least one character.
	minLen := max(chunkSize/2, overlap+1)

	start := 0
	for {
		if n-start <= chunkSize {
			chunks = append(chunks, domain.Chunk{Content: string(runes[start:]), Position: len(chunks)})
			break
		}

		end := c.boundary(runes, start+minLen, start+chunkSize)
		chunks = append(chunks, domain.Chunk{Content: string(runes[start:end]), Position: len(chunks)})
		start = end - overlap
	}

	return chunks, nil
}

// boundary returns the end of the chunk: just after the last occurrence of the
// most preferred separator ending within [lo, hi], or hi for a hard cut.
func (c *Chunker) boundary(runes []rune, lo, hi int) int {
	for _, sep := range c.separators {
		for end := hi; end >= lo; end-- {
			if hasSuffixAt(runes, sep, end) {
				return end
			}
		}
	}
	return hi
}

func hasSuffixAt(runes, sep []rune, end int) bool {
	begin := end - len(sep)
	if begin < 0 {
		return false
	}
	for i, r := range sep {
		if runes[begin+i] != r {
			return false
		}
	}
	return true
}

func toRunes(seps []string) [][]rune {
	out := make([][]rune, 0, len(seps))
	for _, s := range seps {
		if s != "" {
			out = append(out, []rune(s))
		}
	}
	return out
}
