// Package tokens counts prompt and completion tokens for logging and
// completion budgets.
//
// A Counter either holds the cl100k_base encoding, loaded once with Load,
// or estimates at four characters per token. Counting never touches the
// network; only Load does.
package tokens

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Encoding is the tokenizer used for counting.
const Encoding = "cl100k_base"

// Counter counts tokens. The zero value and a nil *Counter estimate.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// Estimator returns a Counter that only estimates.
func Estimator() *Counter {
	return &Counter{}
}

// Load returns a Counter backed by the cl100k_base encoding. tiktoken
// downloads the encoding on first use and caches it on disk; Load gives up
// when ctx is done even if that download is still running.
func Load(ctx context.Context) (*Counter, error) {
	type loaded struct {
		enc *tiktoken.Tiktoken
		err error
	}
	done := make(chan loaded, 1)
	go func() {
		enc, err := tiktoken.GetEncoding(Encoding)
		done <- loaded{enc: enc, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("load %s encoding: %w", Encoding, r.err)
		}
		return &Counter{enc: r.enc}, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("load %s encoding: %w", Encoding, ctx.Err())
	}
}

// Exact reports whether counts come from the encoding.
func (c *Counter) Exact() bool {
	return c != nil && c.enc != nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c.Exact() {
		return len(c.enc.Encode(text, nil, nil))
	}
	return Estimate(text)
}

// CountAll sums Count over texts.
func (c *Counter) CountAll(texts []string) int {
	n := 0
	for _, t := range texts {
		n += c.Count(t)
	}
	return n
}

// Measure counts the tokens of a prompt and its completion.
func (c *Counter) Measure(prompt, completion string) Usage {
	return Usage{Prompt: c.Count(prompt), Completion: c.Count(completion)}
}

// Remaining returns how many completion tokens fit in window after prompt,
// capped at maxTokens. A non-positive window means no limit.
func (c *Counter) Remaining(prompt string, window, maxTokens int) int {
	if window <= 0 {
		return maxTokens
	}
	left := max(window-c.Count(prompt), 0)
	if maxTokens > 0 && maxTokens < left {
		return maxTokens
	}
	return left
}

// Estimate approximates the token count at four characters per token.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

// Usage is the token usage of one completion.
type Usage struct {
	Prompt     int
	Completion int
}

// Total returns prompt plus completion tokens.
func (u Usage) Total() int {
	return u.Prompt + u.Completion
}

// contextWindows maps model name prefixes to context window sizes.
// Longer prefixes are listed before the shorter ones they extend.
var contextWindows = []struct {
	prefix string
	window int
}{
	{"gpt-4.1", 1047576},
	{"gpt-4o", 128000},
	{"gpt-4-turbo", 128000},
	{"gpt-4", 8192},
	{"gpt-3.5-turbo", 16385},
	{"o1", 200000},
	{"o3", 200000},
	{"o4", 200000},
	{"claude-", 200000},
}

// ContextWindow returns the context window of a known model, or 0.
func ContextWindow(model string) int {
	for _, w := range contextWindows {
		if strings.HasPrefix(model, w.prefix) {
			return w.window
		}
	}
	return 0
}
