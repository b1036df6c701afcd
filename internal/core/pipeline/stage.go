// Package pipeline provides typed, composable processing stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Stage transforms an In value into an Out value.
type Stage[In, Out any] interface {
	// Name identifies the stage in errors and logs.
	Name() string

	// Run executes the stage.
	Run(ctx context.Context, in In) (Out, error)
}

// Func adapts a function to the Stage interface.
type Func[In, Out any] struct {
	name string
	fn   func(ctx context.Context, in In) (Out, error)
}

// NewStage creates a named stage from fn.
func NewStage[In, Out any](name string, fn func(ctx context.Context, in In) (Out, error)) *Func[In, Out] {
	return &Func[In, Out]{name: name, fn: fn}
}

// Name returns the stage name.
func (f *Func[In, Out]) Name() string {
	return f.name
}

// Run calls the wrapped function.
func (f *Func[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	return f.fn(ctx, in)
}

// Then composes two stages. The context is checked before each stage runs,
// so a cancelled pipeline never starts another stage.
func Then[A, B, C any](first Stage[A, B], second Stage[B, C]) Stage[A, C] {
	return &chain[A, B, C]{first: first, second: second}
}

type chain[A, B, C any] struct {
	first  Stage[A, B]
	second Stage[B, C]
}

func (c *chain[A, B, C]) Name() string {
	return c.first.Name() + " -> " + c.second.Name()
}

func (c *chain[A, B, C]) Run(ctx context.Context, in A) (C, error) {
	var zero C

	mid, err := runStage(ctx, c.first, in)
	if err != nil {
		return zero, err
	}
	return runStage(ctx, c.second, mid)
}

// Run executes a single stage after checking for cancellation.
// Errors are annotated with the name of the innermost failing stage.
func Run[In, Out any](ctx context.Context, s Stage[In, Out], in In) (Out, error) {
	return runStage(ctx, s, in)
}

func runStage[In, Out any](ctx context.Context, s Stage[In, Out], in In) (Out, error) {
	var zero Out
	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("before %s: %w", s.Name(), err)
	}

	out, err := s.Run(ctx, in)
	if err != nil {
		var se *StageError
		if errors.As(err, &se) {
			return zero, err
		}
		return zero, &StageError{Stage: s.Name(), Err: err}
	}
	return out, nil
}

// StageError records which stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the stage's error.
func (e *StageError) Unwrap() error {
	return e.Err
}
