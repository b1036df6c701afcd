package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/logger"
)

const completionBody = `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4",` +
	`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"answer"}}],` +
	`"usage":{"prompt_tokens":5,"completion_tokens":1,"total_tokens":6}}`

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])
		assert.EqualValues(t, 500, req["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",` +
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"answer"}}],` +
			`"usage":{"prompt_tokens":5,"completion_tokens":1,"total_tokens":6}}`))
	}))
	defer srv.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: srv.URL, MaxTokens: 500, Temperature: 0.3})
	require.NoError(t, err)

	out, err := svc.Complete(context.Background(), "question")

	require.NoError(t, err)
	assert.Equal(t, "answer", out)
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"m","choices":[]}`))
	}))
	defer srv.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), "question")

	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestComplete_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), "question")

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.True(t, domain.IsTransient(err))
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})

	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestComplete_CapsMaxTokensToContextWindow(t *testing.T) {
	var gotMax float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotMax, _ = req["max_tokens"].(float64)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: srv.URL, Model: "gpt-4", MaxTokens: 500})
	require.NoError(t, err)

	// 8000 estimated tokens leave 192 of gpt-4's 8192.
	_, err = svc.Complete(context.Background(), strings.Repeat("abcd", 8000))

	require.NoError(t, err)
	assert.EqualValues(t, 192, gotMax)
}

func TestComplete_PromptFillsContextWindow(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: srv.URL, Model: "gpt-4", MaxTokens: 500})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), strings.Repeat("abcd", 9000))

	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.False(t, domain.IsTransient(err))
	assert.False(t, called)
}

func TestComplete_VerboseCountingStaysOffline(t *testing.T) {
	// An unreachable tokenizer download must not hold up a completion.
	stall, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer stall.Close()
	t.Setenv("HTTPS_PROXY", "http://"+stall.Addr().String())
	t.Setenv("TIKTOKEN_CACHE_DIR", t.TempDir())

	var logs bytes.Buffer
	logger.SetOutput(&logs)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	start := time.Now()

	out, err := svc.Complete(ctx, "question")

	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, logs.String(), "counted")
}
