package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/hupe1980/reactmesh/agent"
)

var (
	headerColor      = color.New(color.FgMagenta, color.Bold)
	thoughtColor     = color.New(color.FgCyan)
	actionColor      = color.New(color.FgYellow)
	observationColor = color.New(color.FgWhite)
	malformedColor   = color.New(color.FgRed)
	answerColor      = color.New(color.FgGreen, color.Bold)
	failureColor     = color.New(color.FgRed, color.Bold)
)

// stepPrinter renders steps as they complete. It is registered as an
// on_step callback.
type stepPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func newStepPrinter(w io.Writer) *stepPrinter { return &stepPrinter{w: w} }

func (p *stepPrinter) Type() agent.CallbackType { return agent.CallbackOnStep }

func (p *stepPrinter) Execute(_ context.Context, cc *agent.CallbackContext) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := cc.Step
	headerColor.Fprintf(p.w, "--- Step %d ---\n", s.Iteration)
	if s.HasThought {
		thoughtColor.Fprintf(p.w, "Thought: %s\n", s.Thought)
	}
	actionColor.Fprintf(p.w, "Action: %s\n", s.Action)

	if s.Malformed && s.Observation == "" {
		malformedColor.Fprintln(p.w, "(malformed action skipped)")
	} else {
		observationColor.Fprintf(p.w, "Observation: %s\n", s.Observation)
	}

	fmt.Fprintln(p.w)
	return nil
}

// printResult writes the final outcome of a run.
func printResult(w io.Writer, res *agent.Result) {
	fmt.Fprintln(w, strings.Repeat("=", 60))

	switch res.Status {
	case agent.StatusFinished:
		answerColor.Fprintln(w, "Final Answer")
	case agent.StatusExhausted:
		failureColor.Fprintln(w, "No Answer (step limit reached)")
	default:
		failureColor.Fprintln(w, "Run Aborted")
	}

	fmt.Fprintln(w, res.Answer)
	fmt.Fprintf(w, "(%d iterations, %s, run %s)\n", res.Iterations, res.Duration.Round(time.Millisecond), res.RunID)
}
