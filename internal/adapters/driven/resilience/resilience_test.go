package resilience

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

func fastPolicy(retries int) Policy {
	return Policy{MaxRetries: retries}
}

func TestRunner_RetriesTransient(t *testing.T) {
	r := NewRunner(fastPolicy(3))
	calls := 0

	err := r.Do(context.Background(), "embed", func(context.Context) error {
		calls++
		if calls < 3 {
			return domain.NewTransientError("openai", "embed", errors.New("503"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRunner_GivesUpAfterMaxRetries(t *testing.T) {
	r := NewRunner(fastPolicy(2))
	calls := 0

	err := r.Do(context.Background(), "embed", func(context.Context) error {
		calls++
		return domain.NewTransientError("openai", "embed", errors.New("503"))
	})

	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Equal(t, 3, calls)
}

func TestRunner_DoesNotRetryPermanent(t *testing.T) {
	r := NewRunner(fastPolicy(5))
	calls := 0

	err := r.Do(context.Background(), "embed", func(context.Context) error {
		calls++
		return domain.NewProviderError("openai", "embed", errors.New("401"))
	})

	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Equal(t, 1, calls)
}

func TestRunner_TimeoutIsTransient(t *testing.T) {
	r := NewRunner(Policy{Timeout: 10 * time.Millisecond, MaxRetries: 1})
	calls := 0

	err := r.Do(context.Background(), "complete", func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	})

	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
	assert.Equal(t, 2, calls)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(Policy{MaxRetries: 3, BaseBackoff: time.Hour})

	err := r.Do(ctx, "embed", func(context.Context) error {
		cancel()
		return domain.NewTransientError("openai", "embed", errors.New("503"))
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_Backoff(t *testing.T) {
	r := NewRunner(Policy{BaseBackoff: time.Second, MaxBackoff: 3 * time.Second})

	assert.Equal(t, time.Second, r.backoff(1))
	assert.Equal(t, 2*time.Second, r.backoff(2))
	assert.Equal(t, 3*time.Second, r.backoff(3))
}

func TestFromSettings(t *testing.T) {
	p := FromSettings(domain.DefaultAppSettings().Provider)

	assert.Equal(t, 60*time.Second, p.Timeout)
	assert.Equal(t, 3, p.MaxRetries)
	assert.Equal(t, DefaultBaseBackoff, p.BaseBackoff)
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
		limited   bool
	}{
		{http.StatusTooManyRequests, true, true},
		{http.StatusServiceUnavailable, true, false},
		{http.StatusUnauthorized, false, false},
		{http.StatusBadRequest, false, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := StatusError("ollama", "embed", tt.status, []byte("body"))

			assert.ErrorIs(t, err, domain.ErrProvider)
			assert.Equal(t, tt.transient, domain.IsTransient(err))
			assert.Equal(t, tt.limited, errors.Is(err, domain.ErrRateLimited))
		})
	}
}

func TestTransportError(t *testing.T) {
	assert.True(t, domain.IsTransient(TransportError("ollama", "embed", errors.New("connection refused"))))
	assert.Equal(t, context.Canceled, TransportError("ollama", "embed", context.Canceled))
}

// fakeEmbedding implements driven.EmbeddingService for decorator tests.
type fakeEmbedding struct {
	failures int
	calls    int
}

func (f *fakeEmbedding) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, domain.NewTransientError("fake", "embed", errors.New("busy"))
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}

func (f *fakeEmbedding) Dimensions() int { return 1 }
func (f *fakeEmbedding) ModelName() string { return "fake" }
func (f *fakeEmbedding) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedding) Close() error { return nil }

func TestWrapEmbedding(t *testing.T) {
	inner := &fakeEmbedding{failures: 1}
	svc := WrapEmbedding(inner, NewRunner(fastPolicy(2)))

	vectors, err := svc.Embed(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, "fake", svc.ModelName())
}
