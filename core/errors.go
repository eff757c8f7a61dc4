package core

import (
	"errors"
	"fmt"
)

var (
	// ErrReasoningUnavailable is returned when the reasoning model yields no
	// usable output. Fatal for the run.
	ErrReasoningUnavailable = errors.New("reasoning model returned no usable output")

	// ErrNoAction is returned when the model output carries no Action marker.
	// Fatal for the run.
	ErrNoAction = errors.New("could not resolve next action from model output")

	// ErrMaxIterations signals that the iteration bound was reached.
	ErrMaxIterations = errors.New("maximum iterations reached without a final answer")

	// ErrUnknownTool is used when an action names a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")
)

// RunError annotates a fatal run failure with the run and iteration it
// occurred in. It unwraps to the underlying cause.
type RunError struct {
	RunID     string
	Iteration int
	Err       error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %s failed at iteration %d: %v", e.RunID, e.Iteration, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error { return e.Err }
