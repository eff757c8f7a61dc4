package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/reactmesh/action"
	"github.com/hupe1980/reactmesh/core"
	"github.com/hupe1980/reactmesh/logging"
	"github.com/hupe1980/reactmesh/model"
	"github.com/hupe1980/reactmesh/prompt"
	"github.com/hupe1980/reactmesh/tool"
)

// DefaultMaxSteps bounds the number of iterations of a run.
const DefaultMaxSteps = 5

// ReActAgentOptions configures a ReActAgent instance.
//
// Use functional options with NewReActAgent to override defaults.
type ReActAgentOptions struct {
	// MaxSteps is the iteration bound of a run.
	MaxSteps int
	// Template renders the prompt of every iteration.
	Template *prompt.Template
	// SystemPrompt, when set, is sent as a system message before the prompt.
	SystemPrompt Instruction
	// Logger receives structured loop events.
	Logger logging.Logger
	// Callbacks are executed at the lifecycle points of every run.
	Callbacks *CallbackManager
	// ReportMalformed feeds malformed actions back to the model as an
	// observation instead of silently skipping the iteration.
	ReportMalformed bool
	// ToolTimeout bounds a single tool call. Zero means no timeout.
	ToolTimeout time.Duration
}

// ReActAgent drives the Thought/Action/Observation loop over a reasoning
// model and a tool registry.
//
// The agent holds no per-run state; every Run gets its own history, step log
// and limiter, so one instance can serve concurrent runs as long as the
// model, tools and callbacks are themselves safe for concurrent use.
type ReActAgent struct {
	name            string
	model           model.Model
	tools           *tool.Registry
	maxSteps        int
	template        *prompt.Template
	systemPrompt    Instruction
	logger          logging.Logger
	callbacks       *CallbackManager
	reportMalformed bool
	toolTimeout     time.Duration
}

// NewReActAgent creates an agent with sensible defaults.
//
// Defaults:
//   - 5 iterations per run, also used when MaxSteps is not positive
//   - prompt.DefaultTemplate()
//   - no system prompt
//   - NoOpLogger
//   - malformed actions skipped silently
//   - no tool timeout
//
// A nil registry is replaced by an empty one.
func NewReActAgent(name string, llm model.Model, tools *tool.Registry, optFns ...func(o *ReActAgentOptions)) *ReActAgent {
	opts := ReActAgentOptions{
		MaxSteps: DefaultMaxSteps,
		Template: prompt.DefaultTemplate(),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.Template == nil {
		opts.Template = prompt.DefaultTemplate()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if tools == nil {
		tools = tool.NewRegistry()
	}

	return &ReActAgent{
		name:            name,
		model:           llm,
		tools:           tools,
		maxSteps:        opts.MaxSteps,
		template:        opts.Template,
		systemPrompt:    opts.SystemPrompt,
		logger:          opts.Logger,
		callbacks:       opts.Callbacks,
		reportMalformed: opts.ReportMalformed,
		toolTimeout:     opts.ToolTimeout,
	}
}

// Name returns the agent name.
func (a *ReActAgent) Name() string { return a.name }

// Tools returns the registry the agent dispatches to.
func (a *ReActAgent) Tools() *tool.Registry { return a.tools }

// Model returns the reasoning model.
func (a *ReActAgent) Model() model.Model { return a.model }

// MaxSteps returns the iteration bound.
func (a *ReActAgent) MaxSteps() int { return a.maxSteps }

// Run answers question by iterating Thought/Action/Observation rounds.
//
// The returned Result is never nil. The error is non-nil only when the run
// aborted (reasoning unavailable, no action, cancellation, callback failure);
// it is then a *core.RunError wrapping the cause. Exhausting MaxSteps is not
// an error: the result carries StatusExhausted and MaxIterationsMessage.
func (a *ReActAgent) Run(ctx context.Context, question string) (*Result, error) {
	rc := core.NewRunContext(ctx, a.name, question, a.maxSteps, a.logger)
	start := time.Now()

	rc.LogInfo("react.start", "agent", a.name, "max_steps", a.maxSteps)

	res, err := a.loop(rc)
	res.RunID = rc.RunID
	res.Steps = rc.Steps()
	res.Iterations = rc.Limiter.Count()
	res.Duration = time.Since(start)

	if cbErr := a.callbacks.ExecuteCallbacks(rc.Context, CallbackOnFinish, &CallbackContext{
		RunContext: rc,
		AgentName:  a.name,
		Result:     res,
	}); cbErr != nil {
		rc.LogWarn("react.callback.error", "callback", string(CallbackOnFinish), "error", cbErr.Error())
	}

	return res, err
}

func (a *ReActAgent) loop(rc *core.RunContext) (*Result, error) {
	for {
		if err := rc.Err(); err != nil {
			return a.abort(rc, CancelledMessage, err)
		}

		iteration, err := rc.Limiter.Next()
		if err != nil {
			rc.LogWarn("react.exhausted", "iterations", rc.Limiter.Count())
			return &Result{Status: StatusExhausted, Answer: MaxIterationsMessage}, nil
		}

		stepStart := time.Now()
		rc.LogDebug("react.iteration", "iteration", iteration)

		// THINKING
		text, err := a.think(rc, iteration)
		if err != nil {
			if ctxErr := rc.Err(); ctxErr != nil {
				return a.abort(rc, CancelledMessage, ctxErr)
			}
			var cbErr *callbackError
			if errors.As(err, &cbErr) {
				return a.abort(rc, cbErr.Error(), cbErr)
			}
			return a.abort(rc, ReasoningUnavailableMessage, err)
		}

		// ACTING
		out := action.ParseOutput(text)
		if out.HasThought {
			rc.LogDebug("react.thought", "iteration", iteration, "thought", out.Thought)
		}
		if !out.HasAction {
			return a.abort(rc, NoActionMessage, core.ErrNoAction)
		}

		act := action.Parse(out.Action)
		step := core.Step{
			Iteration:  iteration,
			Thought:    out.Thought,
			HasThought: out.HasThought,
			Action:     out.Action,
		}

		switch act.Kind {
		case action.KindFinish:
			rc.LogInfo("react.finish", "iteration", iteration)
			return &Result{Status: StatusFinished, Answer: act.Answer}, nil

		case action.KindUnparseable:
			step.Malformed = true
			rc.LogWarn("react.malformed", "iteration", iteration, "reason", act.Reason, "action", act.Raw)
			if a.reportMalformed {
				step.Observation = malformedObservation(act)
				rc.History.AppendAction(step.Action)
				rc.History.AppendObservation(step.Observation)
			}

		case action.KindToolCall:
			step.ToolName = act.Tool
			step.Args = act.Args
			observation, err := a.act(rc, iteration, &act)
			if err != nil {
				return a.abort(rc, err.Error(), err)
			}
			step.Observation = observation

			// OBSERVING
			rc.History.AppendAction(step.Action)
			rc.History.AppendObservation(step.Observation)
		}

		step.Duration = time.Since(stepStart)
		rc.AddStep(step)

		if err := a.callbacks.ExecuteCallbacks(rc.Context, CallbackOnStep, &CallbackContext{
			RunContext: rc,
			AgentName:  a.name,
			Iteration:  iteration,
			Step:       &step,
		}); err != nil {
			return a.abort(rc, err.Error(), err)
		}
	}
}

// callbackError marks a failure raised by a model callback rather than by
// the model itself.
type callbackError struct {
	callbackType CallbackType
	err          error
}

func (e *callbackError) Error() string {
	return fmt.Sprintf("%s callback failed: %v", e.callbackType, e.err)
}

func (e *callbackError) Unwrap() error { return e.err }

// think renders the prompt and asks the model for the next reply. A blank
// reply is reported as core.ErrReasoningUnavailable.
func (a *ReActAgent) think(rc *core.RunContext, iteration int) (string, error) {
	text, err := a.template.Render(prompt.Data{
		Tools:    a.tools.Describe(),
		Question: rc.Question,
		History:  rc.History.String(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrReasoningUnavailable, err)
	}

	messages := make([]core.Message, 0, 2)
	if !a.systemPrompt.IsZero() {
		system, err := a.systemPrompt.Resolve(rc)
		if err != nil {
			return "", fmt.Errorf("%w: resolve system prompt: %v", core.ErrReasoningUnavailable, err)
		}
		if system != "" {
			messages = append(messages, core.NewSystemMessage(system))
		}
	}
	messages = append(messages, core.NewUserMessage(text))

	if err := a.callbacks.ExecuteCallbacks(rc.Context, CallbackBeforeModel, &CallbackContext{
		RunContext: rc,
		AgentName:  a.name,
		Iteration:  iteration,
		Messages:   messages,
	}); err != nil {
		return "", &callbackError{callbackType: CallbackBeforeModel, err: err}
	}

	start := time.Now()
	reply, err := a.model.Think(rc.Context, messages)
	info := a.model.Info()
	if err != nil {
		rc.LogError("react.model.error", "iteration", iteration, "model", info.Name, "error", err.Error())
		return "", fmt.Errorf("%w: %v", core.ErrReasoningUnavailable, err)
	}
	rc.LogDebug("react.model.reply", "iteration", iteration, "model", info.Name, "duration_ms", time.Since(start).Milliseconds())

	if strings.TrimSpace(reply) == "" {
		return "", core.ErrReasoningUnavailable
	}

	if err := a.callbacks.ExecuteCallbacks(rc.Context, CallbackAfterModel, &CallbackContext{
		RunContext: rc,
		AgentName:  a.name,
		Iteration:  iteration,
		Output:     reply,
	}); err != nil {
		return "", &callbackError{callbackType: CallbackAfterModel, err: err}
	}

	return reply, nil
}

// act resolves and invokes the tool named by act. Unknown tools and tool
// failures become observations; only callback errors are returned.
func (a *ReActAgent) act(rc *core.RunContext, iteration int, act *action.Action) (string, error) {
	t, ok := a.tools.Lookup(act.Tool)
	if !ok {
		rc.LogWarn("react.tool.unknown", "iteration", iteration, "tool", act.Tool, "error", core.ErrUnknownTool.Error())
		return unknownToolObservation(act.Tool, a.tools.Names()), nil
	}

	if err := a.callbacks.ExecuteCallbacks(rc.Context, CallbackBeforeTool, &CallbackContext{
		RunContext: rc,
		AgentName:  a.name,
		Iteration:  iteration,
		Action:     act,
	}); err != nil {
		return "", &callbackError{callbackType: CallbackBeforeTool, err: err}
	}

	ctx := core.WithToolContext(rc.Context, core.NewToolContext(rc, iteration, act.Tool))
	if a.toolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.toolTimeout)
		defer cancel()
	}

	rc.LogInfo("react.tool.call", "iteration", iteration, "tool", act.Tool, "args", len(act.Args))

	start := time.Now()
	observation, err := tool.Invoke(ctx, t, tool.Args(act.Args))
	if err != nil {
		rc.LogWarn("react.tool.error", "iteration", iteration, "tool", act.Tool, "error", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		observation = toolFailureObservation(act.Tool, err)
	}

	if err := a.callbacks.ExecuteCallbacks(rc.Context, CallbackAfterTool, &CallbackContext{
		RunContext:  rc,
		AgentName:   a.name,
		Iteration:   iteration,
		Action:      act,
		Observation: observation,
	}); err != nil {
		return "", &callbackError{callbackType: CallbackAfterTool, err: err}
	}

	return observation, nil
}

func (a *ReActAgent) abort(rc *core.RunContext, answer string, cause error) (*Result, error) {
	rc.LogWarn("react.abort", "iteration", rc.Limiter.Count(), "error", cause.Error())
	return &Result{Status: StatusAborted, Answer: answer}, rc.Fail(cause)
}

func unknownToolObservation(name string, available []string) string {
	list := "none"
	if len(available) > 0 {
		list = strings.Join(available, ", ")
	}
	return fmt.Sprintf("Error: %v '%s'. Available tools: %s", core.ErrUnknownTool, name, list)
}

func toolFailureObservation(name string, err error) string {
	msg := err.Error()
	var toolErr *tool.ToolError
	if errors.As(err, &toolErr) && toolErr.Message != "" {
		msg = toolErr.Message
	}
	return fmt.Sprintf("Error: tool '%s' failed: %s", name, msg)
}

func malformedObservation(act action.Action) string {
	return fmt.Sprintf(
		"Error: malformed action (%s). Use tool_name[arg=\"value\"] to call a tool or %s[answer] to finish.",
		act.Reason, action.FinishKeyword,
	)
}
