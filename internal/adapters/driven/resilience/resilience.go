// Package resilience wraps provider ports with timeouts, retries and rate limiting.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Default backoff bounds.
const (
	DefaultBaseBackoff = 500 * time.Millisecond
	DefaultMaxBackoff  = 8 * time.Second
)

// Policy controls how a provider call is attempted.
type Policy struct {
	// Timeout bounds a single attempt. Zero disables it.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// RequestsPerSecond is the sustained call rate. Zero disables limiting.
	RequestsPerSecond float64

	// BaseBackoff is the wait before the first retry; it doubles per retry.
	BaseBackoff time.Duration

	// MaxBackoff caps the wait between retries.
	MaxBackoff time.Duration
}

// FromSettings builds a Policy from the configured provider policy.
func FromSettings(p domain.ProviderPolicy) Policy {
	return Policy{
		Timeout:           p.Timeout,
		MaxRetries:        p.MaxRetries,
		RequestsPerSecond: p.RequestsPerSecond,
		BaseBackoff:       DefaultBaseBackoff,
		MaxBackoff:        DefaultMaxBackoff,
	}
}

// Runner executes calls under a Policy. It is safe for concurrent use.
type Runner struct {
	policy  Policy
	limiter *rate.Limiter
}

// NewRunner creates a runner for the policy.
func NewRunner(policy Policy) *Runner {
	r := &Runner{policy: policy}
	if policy.RequestsPerSecond > 0 {
		burst := int(policy.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(policy.RequestsPerSecond), burst)
	}
	return r
}

// Do runs fn, retrying transient failures with exponential backoff.
// Non-transient errors and context errors are returned immediately.
func (r *Runner) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := r.backoff(attempt)
			logger.Debug("Retrying %s in %s (attempt %d): %v", op, wait, attempt+1, lastErr)
			if err := sleep(ctx, wait); err != nil {
				return err
			}
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limit %s: %w", op, err)
			}
		}

		err := r.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !domain.IsTransient(err) {
			return err
		}
		lastErr = err
	}
	logger.Warn("%s failed after %d attempts: %v", op, r.policy.MaxRetries+1, lastErr)
	return lastErr
}

func (r *Runner) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.policy.Timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, r.policy.Timeout)
	defer cancel()
	err := fn(callCtx)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return domain.NewTransientError("provider", "call", fmt.Errorf("attempt timed out after %s: %w", r.policy.Timeout, err))
	}
	return err
}

func (r *Runner) backoff(attempt int) time.Duration {
	wait := r.policy.BaseBackoff << (attempt - 1)
	if r.policy.MaxBackoff > 0 && (wait > r.policy.MaxBackoff || wait <= 0) {
		wait = r.policy.MaxBackoff
	}
	return wait
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StatusError classifies a non-2xx HTTP response. 429 and 5xx are transient.
func StatusError(provider, op string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	switch {
	case status == http.StatusTooManyRequests:
		return domain.NewTransientError(provider, op, fmt.Errorf("%w: status %d: %s", domain.ErrRateLimited, status, msg))
	case status >= http.StatusInternalServerError:
		return domain.NewTransientError(provider, op, fmt.Errorf("status %d: %s", status, msg))
	default:
		return domain.NewProviderError(provider, op, fmt.Errorf("status %d: %s", status, msg))
	}
}

// TransportError classifies a failure to reach the provider. Context
// errors pass through untouched; anything else is transient.
func TransportError(provider, op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.NewTransientError(provider, op, err)
}
