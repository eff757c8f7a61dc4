package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_AppendOrder(t *testing.T) {
	h := &History{}
	h.AppendAction(`get_weather[city="Beijing"]`)
	h.AppendObservation("Sunny, 25C")

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []string{
		`Action: get_weather[city="Beijing"]`,
		"Observation: Sunny, 25C",
	}, h.Entries())
	assert.Equal(t, "Action: get_weather[city=\"Beijing\"]\nObservation: Sunny, 25C", h.String())
}

func TestHistory_EntriesIsCopy(t *testing.T) {
	h := &History{}
	h.AppendAction("a")

	entries := h.Entries()
	entries[0] = "changed"

	assert.Equal(t, "Action: a", h.Entries()[0])
}

func TestStepLimiter(t *testing.T) {
	l := NewStepLimiter(2)

	i, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Equal(t, 1, l.Remaining())

	i, err = l.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	_, err = l.Next()
	assert.ErrorIs(t, err, ErrMaxIterations)
	assert.Equal(t, 2, l.Count())
	assert.Equal(t, 0, l.Remaining())
}

func TestStepLimiter_ZeroAllowsNothing(t *testing.T) {
	_, err := NewStepLimiter(0).Next()
	assert.ErrorIs(t, err, ErrMaxIterations)
}

func TestRunContext_Isolation(t *testing.T) {
	a := NewRunContext(context.Background(), "agent", "q1", 5, nil)
	b := NewRunContext(context.Background(), "agent", "q2", 5, nil)

	assert.NotEqual(t, a.RunID, b.RunID)

	a.History.AppendAction("x")
	a.AddStep(Step{Iteration: 1})

	assert.Equal(t, 0, b.History.Len())
	assert.Empty(t, b.Steps())
	assert.Len(t, a.Steps(), 1)
	assert.NotNil(t, a.Logger())
}

func TestRunContext_Fail(t *testing.T) {
	rc := NewRunContext(context.Background(), "agent", "q", 3, nil)
	_, _ = rc.Limiter.Next()

	err := rc.Fail(ErrNoAction)

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, rc.RunID, runErr.RunID)
	assert.Equal(t, 1, runErr.Iteration)
	assert.ErrorIs(t, err, ErrNoAction)
}

func TestRunContext_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rc := NewRunContext(ctx, "agent", "q", 1, nil)

	cancel()

	<-rc.Done()
	assert.ErrorIs(t, rc.Err(), context.Canceled)
}
