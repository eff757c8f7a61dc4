// Package reactmesh provides a high-level façade over the ReAct agent loop,
// its tool registry and a reasoning model. Most applications interact with
// this package by:
//  1. Creating a Mesh via New() with a model.Model
//  2. Registering tools (Register, RegisterFunc or the builtin package)
//  3. Answering questions synchronously (Run) or many at once (RunBatch)
//
// The façade delegates the loop itself to agent.ReActAgent while keeping
// setup concise. Defaults are safe for local development and testing.
package reactmesh

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/reactmesh/agent"
	"github.com/hupe1980/reactmesh/logging"
	"github.com/hupe1980/reactmesh/model"
	"github.com/hupe1980/reactmesh/prompt"
	"github.com/hupe1980/reactmesh/tool"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrentRuns bounds RunBatch when Options.MaxConcurrentRuns is unset.
const DefaultMaxConcurrentRuns = 4

// Options configures the Mesh instance.
type Options struct {
	// Name identifies the agent in logs and callbacks.
	Name string

	// MaxSteps is the iteration bound of every run.
	MaxSteps int

	// MaxConcurrentRuns limits how many questions RunBatch answers
	// simultaneously. Values below 1 fall back to DefaultMaxConcurrentRuns.
	MaxConcurrentRuns int

	// Template and SystemPrompt shape what the model sees.
	Template     *prompt.Template
	SystemPrompt agent.Instruction

	// ReportMalformed feeds malformed actions back to the model.
	ReportMalformed bool

	// ToolTimeout bounds every tool call. Zero disables the bound.
	ToolTimeout time.Duration

	// Callbacks observe the lifecycle of every run.
	Callbacks *agent.CallbackManager

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Mesh is the high-level façade aggregating a model, a registry and the agent.
type Mesh struct {
	opts  Options
	tools *tool.Registry
	agent *agent.ReActAgent
}

// New creates a Mesh answering questions with llm. The registry starts with
// tools and can be extended later; the agent observes registrations made
// after New.
func New(llm model.Model, tools []tool.Tool, optFns ...func(o *Options)) *Mesh {
	opts := Options{
		Name:              "react",
		MaxSteps:          agent.DefaultMaxSteps,
		MaxConcurrentRuns: DefaultMaxConcurrentRuns,
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxConcurrentRuns < 1 {
		opts.MaxConcurrentRuns = DefaultMaxConcurrentRuns
	}

	registry := tool.NewRegistry(tools...)

	a := agent.NewReActAgent(opts.Name, llm, registry, func(o *agent.ReActAgentOptions) {
		o.MaxSteps = opts.MaxSteps
		o.Template = opts.Template
		o.SystemPrompt = opts.SystemPrompt
		o.Logger = opts.Logger
		o.Callbacks = opts.Callbacks
		o.ReportMalformed = opts.ReportMalformed
		o.ToolTimeout = opts.ToolTimeout
	})

	return &Mesh{opts: opts, tools: registry, agent: a}
}

// Register adds a tool, replacing any tool with the same name.
func (m *Mesh) Register(t tool.Tool) { m.tools.Register(t) }

// RegisterFunc exposes a plain function as a tool.
func (m *Mesh) RegisterFunc(name, description string, fn tool.Func, optFns ...func(o *tool.FunctionToolOptions)) {
	m.tools.RegisterFunc(name, description, fn, optFns...)
}

// Tools returns the registry backing the mesh.
func (m *Mesh) Tools() *tool.Registry { return m.tools }

// Agent returns the underlying agent.
func (m *Mesh) Agent() *agent.ReActAgent { return m.agent }

// Run answers a single question. See agent.ReActAgent.Run for the result
// and error contract.
func (m *Mesh) Run(ctx context.Context, question string) (*agent.Result, error) {
	return m.agent.Run(ctx, question)
}

// BatchResult is the outcome of one question answered by RunBatch.
type BatchResult struct {
	Question string
	Result   *agent.Result
	Err      error
}

// RunBatch answers questions concurrently, at most MaxConcurrentRuns at a
// time. Results keep the order of questions. An aborted run does not stop
// the others; its error is reported in the corresponding BatchResult. When
// ctx ends, questions that have not started yet are not run: their
// BatchResult carries the context error and so does the returned error.
func (m *Mesh) RunBatch(ctx context.Context, questions []string) ([]BatchResult, error) {
	results := make([]BatchResult, len(questions))
	skipped := make([]bool, len(questions))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.MaxConcurrentRuns)

	for i, q := range questions {
		if err := gCtx.Err(); err != nil {
			results[i] = BatchResult{Question: q, Err: err}
			skipped[i] = true
			continue
		}

		g.Go(func() error {
			// The slot may have freed up only after ctx ended.
			if err := gCtx.Err(); err != nil {
				results[i] = BatchResult{Question: q, Err: err}
				skipped[i] = true
				return nil
			}
			res, err := m.agent.Run(gCtx, q)
			results[i] = BatchResult{Question: q, Result: res, Err: err}
			return nil
		})
	}

	_ = g.Wait()

	notStarted := 0
	for _, s := range skipped {
		if s {
			notStarted++
		}
	}
	if notStarted > 0 {
		return results, fmt.Errorf("batch interrupted: %d of %d questions not started: %w",
			notStarted, len(questions), ctx.Err())
	}

	return results, nil
}
