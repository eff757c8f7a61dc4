package agent

import (
	"time"

	"github.com/hupe1980/reactmesh/core"
)

// Status is the terminal state of a run.
type Status string

const (
	// StatusFinished means the model emitted a finish action.
	StatusFinished Status = "finished"
	// StatusAborted means the run stopped on a fatal condition.
	StatusAborted Status = "aborted"
	// StatusExhausted means the iteration bound was reached.
	StatusExhausted Status = "exhausted"
)

// Messages used as the Answer of runs that did not finish.
const (
	ReasoningUnavailableMessage = "reasoning model returned no usable output"
	NoActionMessage             = "could not resolve next action from model output"
	MaxIterationsMessage        = "maximum iterations reached without a final answer"
	CancelledMessage            = "run cancelled before a final answer"
)

// Result is the outcome of one run: the final answer (or failure message)
// and the ordered step records.
type Result struct {
	RunID  string      `json:"run_id"`
	Status Status      `json:"status"`
	Answer string      `json:"answer"`
	Steps  []core.Step `json:"steps"`
	// Iterations counts every iteration started, including the one that
	// finished or aborted the run.
	Iterations int           `json:"iterations"`
	Duration   time.Duration `json:"duration"`
}

// Finished reports whether the run produced a final answer.
func (r *Result) Finished() bool { return r != nil && r.Status == StatusFinished }
