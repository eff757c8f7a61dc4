package agent

import (
	"context"
	"sync"

	"github.com/hupe1980/reactmesh/action"
	"github.com/hupe1980/reactmesh/core"
	"github.com/hupe1980/reactmesh/logging"
)

// CallbackType defines the lifecycle points of a run where callbacks execute.
//
// Available callback types:
//   - BeforeModel/AfterModel: Around each reasoning call
//   - BeforeTool/AfterTool: Around each tool invocation
//   - OnStep: After a step record is appended
//   - OnFinish: Once per run, after the result is final
//
// Callbacks run synchronously on the run's goroutine. An error returned from
// any callback except OnFinish aborts the run.
type CallbackType string

const (
	// CallbackBeforeModel is triggered before the reasoning model is called.
	CallbackBeforeModel CallbackType = "before_model"

	// CallbackAfterModel is triggered after the reasoning model returned text.
	CallbackAfterModel CallbackType = "after_model"

	// CallbackBeforeTool is triggered before a registered tool is invoked.
	CallbackBeforeTool CallbackType = "before_tool"

	// CallbackAfterTool is triggered after a tool produced its observation.
	CallbackAfterTool CallbackType = "after_tool"

	// CallbackOnStep is triggered after a step record is appended.
	CallbackOnStep CallbackType = "on_step"

	// CallbackOnFinish is triggered once when the run ends, whatever its
	// status. Errors are logged and do not change the result.
	CallbackOnFinish CallbackType = "on_finish"
)

// CallbackContext carries what a callback may inspect at its lifecycle point.
// Fields that do not apply to the current CallbackType are zero.
type CallbackContext struct {
	// RunContext is the per-run state. Callbacks must treat it as read-only.
	RunContext *core.RunContext

	// AgentName identifies the agent executing the run.
	AgentName string

	// CallbackType indicates which lifecycle point triggered this execution.
	CallbackType CallbackType

	// Iteration is the 1-based loop iteration, 0 for OnFinish.
	Iteration int

	// Messages is the model input (BeforeModel).
	Messages []core.Message

	// Output is the raw model text (AfterModel).
	Output string

	// Action is the parsed tool call (BeforeTool, AfterTool).
	Action *action.Action

	// Observation is the text produced for the tool call (AfterTool).
	Observation string

	// Step is the record just appended (OnStep).
	Step *core.Step

	// Result is the final result (OnFinish).
	Result *Result

	// Metadata provides extensible storage for custom callback data.
	Metadata map[string]any
}

// Callback defines the interface for run lifecycle hooks.
//
// Implementations should be fast (they block the loop) and safe for
// concurrent use when the agent serves parallel runs.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic. Returning an error aborts the run.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
//
// Example:
//
//	printer := NewFunctionCallback(
//	    CallbackOnStep,
//	    func(ctx context.Context, cc *CallbackContext) error {
//	        fmt.Println(cc.Step.Action, "=>", cc.Step.Observation)
//	        return nil
//	    },
//	)
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager holds callbacks per type and executes them in registration
// order. The first error stops the chain and is returned. Registration and
// execution may happen from different goroutines.
type CallbackManager struct {
	mu        sync.RWMutex
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates a new, empty callback manager.
func NewCallbackManager(callbacks ...Callback) *CallbackManager {
	cm := &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
	for _, cb := range callbacks {
		cm.RegisterCallback(cb)
	}
	return cm
}

// RegisterCallback adds a callback for its type.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	if callback == nil {
		return
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.callbacks == nil {
		cm.callbacks = make(map[CallbackType][]Callback)
	}
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// Len returns the number of callbacks registered for callbackType.
func (cm *CallbackManager) Len(callbackType CallbackType) int {
	if cm == nil {
		return 0
	}

	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return len(cm.callbacks[callbackType])
}

// ExecuteCallbacks executes all registered callbacks for the specified type.
// A nil manager executes nothing.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	if cm == nil {
		return nil
	}

	cm.mu.RLock()
	callbacks := append([]Callback(nil), cm.callbacks[callbackType]...)
	cm.mu.RUnlock()

	callbackCtx.CallbackType = callbackType
	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return err
		}
	}

	return nil
}

// LoggingCallback writes a structured log line for a lifecycle point.
type LoggingCallback struct {
	callbackType CallbackType
	logger       logging.Logger
}

// NewLoggingCallback creates a new logging callback.
func NewLoggingCallback(callbackType CallbackType, logger logging.Logger) *LoggingCallback {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the lifecycle point with the fields relevant to it.
func (c *LoggingCallback) Execute(_ context.Context, cc *CallbackContext) error {
	args := []any{"agent", cc.AgentName, "iteration", cc.Iteration}
	if cc.RunContext != nil {
		args = append(args, "run_id", cc.RunContext.RunID)
	}

	switch {
	case cc.Step != nil:
		args = append(args, "action", cc.Step.Action, "observation", cc.Step.Observation)
	case cc.Action != nil:
		args = append(args, "tool", cc.Action.Tool)
	case cc.Result != nil:
		args = append(args, "status", string(cc.Result.Status), "steps", len(cc.Result.Steps))
	}

	c.logger.Info("callback."+string(c.callbackType), args...)
	return nil
}
