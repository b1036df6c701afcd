package pipeline

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStage(t *testing.T) {
	s := NewStage("double", func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})

	assert.Equal(t, "double", s.Name())
	out, err := s.Run(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestThen_ComposesTypes(t *testing.T) {
	parse := NewStage("parse", func(_ context.Context, s string) (int, error) {
		return strconv.Atoi(s)
	})
	square := NewStage("square", func(_ context.Context, n int) (int, error) {
		return n * n, nil
	})
	format := NewStage("format", func(_ context.Context, n int) (string, error) {
		return "=" + strconv.Itoa(n), nil
	})

	p := Then(Then(parse, square), format)

	assert.Equal(t, "parse -> square -> format", p.Name())
	out, err := Run(context.Background(), p, "7")
	require.NoError(t, err)
	assert.Equal(t, "=49", out)
}

func TestThen_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	secondRan := false

	first := NewStage("first", func(_ context.Context, n int) (int, error) {
		return 0, boom
	})
	second := NewStage("second", func(_ context.Context, n int) (int, error) {
		secondRan = true
		return n, nil
	})

	_, err := Run(context.Background(), Then(first, second), 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, secondRan)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "first", se.Stage)
}

func TestThen_ChecksCancellationBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	secondRan := false

	first := NewStage("first", func(_ context.Context, n int) (int, error) {
		cancel()
		return n, nil
	})
	second := NewStage("second", func(_ context.Context, n int) (int, error) {
		secondRan = true
		return n, nil
	})

	_, err := Run(ctx, Then(first, second), 1)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, secondRan)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false

	s := NewStage("only", func(_ context.Context, n int) (int, error) {
		ran = true
		return n, nil
	})

	_, err := Run(ctx, s, 1)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}
