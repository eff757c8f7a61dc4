package core

import (
	"context"

	"github.com/hupe1980/reactmesh/logging"
)

// RunContext carries the mutable, per-invocation execution scope of one agent
// run. It aggregates:
//   - The ambient cancellation Context
//   - Identifiers (RunID, agent name)
//   - The original question
//   - The Action/Observation History injected into every prompt
//   - The ordered Step log returned to the caller
//   - The StepLimiter bounding the number of iterations
//
// A fresh RunContext is created for every run, so a single agent value can
// serve concurrent runs while each run owns its own history. A RunContext
// itself must only be driven by one goroutine.
type RunContext struct {
	Context   context.Context
	RunID     string
	AgentName string
	Question  string
	History   *History
	Limiter   *StepLimiter

	steps []Step

	*loggerAdapter
}

// NewRunContext constructs a RunContext with an empty history and step log.
// Loggers implementing logging.RunScoper are scoped to the new run ID.
func NewRunContext(
	ctx context.Context,
	agentName, question string,
	maxSteps int,
	logger logging.Logger,
) *RunContext {
	if ctx == nil {
		ctx = context.Background()
	}

	runID := NewID()

	return &RunContext{
		Context:       ctx,
		RunID:         runID,
		AgentName:     agentName,
		Question:      question,
		History:       &History{},
		Limiter:       NewStepLimiter(maxSteps),
		steps:         []Step{},
		loggerAdapter: newLoggerAdapter(logging.ForRun(logger, runID)),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// AddStep appends a completed iteration to the step log.
func (rc *RunContext) AddStep(s Step) { rc.steps = append(rc.steps, s) }

// Steps returns a copy of the step log in execution order.
func (rc *RunContext) Steps() []Step {
	out := make([]Step, len(rc.steps))
	copy(out, rc.steps)
	return out
}

// Fail wraps err as a *RunError bound to this run and the current iteration.
func (rc *RunContext) Fail(err error) error {
	return &RunError{RunID: rc.RunID, Iteration: rc.Limiter.Count(), Err: err}
}
