package core

import (
	"context"

	"github.com/hupe1980/reactmesh/logging"
)

// ToolContext describes the invocation a tool is executing under: the run it
// belongs to, the iteration that requested it, and a logger scoped to both.
// The agent attaches it to the context.Context handed to Tool.Call; tools
// recover it with ToolContextFrom.
type ToolContext struct {
	runID     string
	agentName string
	iteration int
	toolName  string

	*loggerAdapter
}

// NewToolContext constructs a tool context bound to a parent RunContext.
func NewToolContext(runCtx *RunContext, iteration int, toolName string) *ToolContext {
	return &ToolContext{
		runID:         runCtx.RunID,
		agentName:     runCtx.AgentName,
		iteration:     iteration,
		toolName:      toolName,
		loggerAdapter: newLoggerAdapter(runCtx.Logger()),
	}
}

// RunID returns the run the tool call belongs to.
func (tc *ToolContext) RunID() string { return tc.runID }

// AgentName returns the name of the agent that issued the call.
func (tc *ToolContext) AgentName() string { return tc.agentName }

// Iteration returns the 1-based loop iteration that issued the call.
func (tc *ToolContext) Iteration() int { return tc.iteration }

// ToolName returns the name of the tool being invoked.
func (tc *ToolContext) ToolName() string { return tc.toolName }

type toolContextKey struct{}

// WithToolContext returns a copy of ctx carrying tc.
func WithToolContext(ctx context.Context, tc *ToolContext) context.Context {
	return context.WithValue(ctx, toolContextKey{}, tc)
}

// ToolContextFrom extracts the ToolContext attached by WithToolContext.
func ToolContextFrom(ctx context.Context) (*ToolContext, bool) {
	if ctx == nil {
		return nil, false
	}
	tc, ok := ctx.Value(toolContextKey{}).(*ToolContext)
	return tc, ok && tc != nil
}

// LoggerFrom returns the logger of the ToolContext carried by ctx, or a
// NoOpLogger when there is none.
func LoggerFrom(ctx context.Context) logging.Logger {
	if tc, ok := ToolContextFrom(ctx); ok {
		return tc.Logger()
	}
	return logging.NoOpLogger{}
}
