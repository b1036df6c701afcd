package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

func longText() string {
	var b strings.Builder
	for i := 0; b.Len() < 5000; i++ {
		fmt.Fprintf(&b, "Sentence number %d talks about retrieval. ", i)
		if i%7 == 6 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func TestSplit_EmptyContent(t *testing.T) {
	c := New()
	for _, text := range []string{"", "   ", "\n\n\t"} {
		chunks, err := c.Split(text, 1000, 200)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunks) != 0 {
			t.Errorf("expected 0 chunks for %q, got %d", text, len(chunks))
		}
	}
}

func TestSplit_SmallContent(t *testing.T) {
	c := New()
	chunks, err := c.Split("short text", 100, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "short text" {
		t.Errorf("expected content 'short text', got %q", chunks[0].Content)
	}
	if chunks[0].Position != 0 {
		t.Errorf("expected position 0, got %d", chunks[0].Position)
	}
}

func TestSplit_InvalidSizes(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero chunk size", 0, 0},
		{"negative chunk size", -5, 0},
		{"negative overlap", 100, -1},
		{"overlap equals chunk size", 100, 100},
		{"overlap exceeds chunk size", 100, 150},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Split("some text", tt.chunkSize, tt.overlap)
			if !errors.Is(err, domain.ErrConfig) {
				t.Fatalf("expected config error, got %v", err)
			}
			var ce *domain.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *domain.ConfigError, got %T", err)
			}
		})
	}
}

func TestSplit_BoundsAndOverlap(t *testing.T) {
	text := longText()
	chunks, err := New().Split(text, 1000, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 5 {
		t.Fatalf("expected at least 5 chunks, got %d", len(chunks))
	}

	for i, ch := range chunks {
		if ch.Len() > 1000 {
			t.Errorf("chunk %d has %d characters", i, ch.Len())
		}
		if ch.Position != i {
			t.Errorf("chunk %d has position %d", i, ch.Position)
		}
		if i == 0 {
			continue
		}
		prev := []rune(chunks[i-1].Content)
		tail := string(prev[len(prev)-200:])
		if !strings.HasPrefix(ch.Content, tail) {
			t.Errorf("chunk %d does not start with the last 200 characters of chunk %d", i, i-1)
		}
	}
}

func TestSplit_Reconstructs(t *testing.T) {
	text := longText()
	chunks, err := New().Split(text, 300, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var b strings.Builder
	for i, ch := range chunks {
		if i == 0 {
			b.WriteString(ch.Content)
			continue
		}
		b.WriteString(string([]rune(ch.Content)[50:]))
	}
	if b.String() != text {
		t.Error("chunks do not reconstruct the original text")
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := longText()
	c := New()
	first, err := c.Split(text, 1000, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Split(text, 1000, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplit_PrefersParagraphBoundary(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60)
	chunks, err := New().Split(text, 100, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != strings.Repeat("a", 60)+"\n\n" {
		t.Errorf("expected first chunk to end at the paragraph break, got %q", chunks[0].Content)
	}
}

func TestSplit_IgnoresBoundaryInFirstHalf(t *testing.T) {
	text := "ab " + strings.Repeat("c", 200)
	chunks, err := New().Split(text, 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks[0].Len() != 100 {
		t.Errorf("expected a hard cut at 100, got %d characters", chunks[0].Len())
	}
}

func TestSplit_HardCut(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks, err := New().Split(text, 100, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{100, 100, 90}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, n := range want {
		if chunks[i].Len() != n {
			t.Errorf("chunk %d: expected %d characters, got %d", i, n, chunks[i].Len())
		}
	}
}

func TestSplit_Multibyte(t *testing.T) {
	text := strings.Repeat("é", 150)
	chunks, err := New().Split(text, 100, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, ch := range chunks {
		if !utf8.ValidString(ch.Content) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
		if ch.Len() > 100 {
			t.Errorf("chunk %d has %d characters", i, ch.Len())
		}
	}
}

func TestWithSeparators_Empty(t *testing.T) {
	text := strings.Repeat("word ", 40)
	chunks, err := New(WithSeparators()).Split(text, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, ch := range chunks[:len(chunks)-1] {
		if ch.Len() != 50 {
			t.Errorf("chunk %d: expected hard cut at 50, got %d", i, ch.Len())
		}
	}
}
