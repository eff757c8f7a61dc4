package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/reactmesh/core"
	"github.com/hupe1980/reactmesh/tool"
)

// RecordingTool is a tool.Tool fake that records every call. By default it
// returns Output; set Err to fail or Panic to panic instead.
type RecordingTool struct {
	ToolName string
	Desc     string
	Output   string
	Err      error
	Panic    any
	// Fn, when set, computes the result and takes precedence over Output/Err.
	Fn func(ctx context.Context, args tool.Args) (string, error)

	mu       sync.Mutex
	calls    []tool.Args
	contexts []*core.ToolContext
}

// NewRecordingTool creates a RecordingTool returning output.
func NewRecordingTool(name, output string) *RecordingTool {
	return &RecordingTool{ToolName: name, Desc: "test tool " + name, Output: output}
}

// Name implements tool.Tool.
func (r *RecordingTool) Name() string { return r.ToolName }

// Description implements tool.Tool.
func (r *RecordingTool) Description() string { return r.Desc }

// Call implements tool.Tool.
func (r *RecordingTool) Call(ctx context.Context, args tool.Args) (string, error) {
	cp := make(tool.Args, len(args))
	for k, v := range args {
		cp[k] = v
	}
	tc, _ := core.ToolContextFrom(ctx)

	r.mu.Lock()
	r.calls = append(r.calls, cp)
	r.contexts = append(r.contexts, tc)
	r.mu.Unlock()

	if r.Panic != nil {
		panic(r.Panic)
	}
	if r.Fn != nil {
		return r.Fn(ctx, args)
	}
	return r.Output, r.Err
}

// Calls returns the recorded argument maps in call order.
func (r *RecordingTool) Calls() []tool.Args {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]tool.Args(nil), r.calls...)
}

// CallCount returns how many times the tool was called.
func (r *RecordingTool) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.calls)
}

// ToolContexts returns the ToolContext seen by each call (nil when absent).
func (r *RecordingTool) ToolContexts() []*core.ToolContext {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*core.ToolContext(nil), r.contexts...)
}
