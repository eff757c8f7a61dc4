package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/reactmesh/core"
)

// Func is the signature of a plain Go function exposed as a tool.
type Func func(ctx context.Context, args Args) (string, error)

// FunctionTool is a generic adapter that exposes a plain Go function as a tool.
//
// Responsibilities:
//   - Checks that the declared required arguments are present
//   - Invokes the wrapped function with the caller's context
//   - Normalizes error handling so callers receive *ToolError with consistent codes:
//     VALIDATION_ERROR  -> missing or malformed argument
//     EXECUTION_ERROR   -> underlying function returned an error (non-ToolError)
//     (custom codes preserved if the function returns *ToolError directly)
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use.
type FunctionTool struct {
	name        string
	description string
	required    []string
	fn          Func
}

// FunctionToolOptions configures a FunctionTool.
type FunctionToolOptions struct {
	// Required lists argument names that must be present and non-blank.
	Required []string
}

// NewFunctionTool constructs a FunctionTool.
//
// Example:
//
//	weather := tool.NewFunctionTool(
//	  "get_weather",
//	  "Get the current weather for a city. Args: city",
//	  func(ctx context.Context, args tool.Args) (string, error) {
//	    return lookup(ctx, args["city"])
//	  },
//	  func(o *tool.FunctionToolOptions) { o.Required = []string{"city"} },
//	)
func NewFunctionTool(name, description string, fn Func, optFns ...func(o *FunctionToolOptions)) *FunctionTool {
	opts := FunctionToolOptions{}
	for _, optFn := range optFns {
		optFn(&opts)
	}

	return &FunctionTool{
		name:        name,
		description: description,
		required:    append([]string(nil), opts.Required...),
		fn:          fn,
	}
}

// NewStructTool builds a FunctionTool whose arguments are bound into a value
// of type T (see Bind). Required arguments are derived from the `arg` tags.
func NewStructTool[T any](name, description string, fn func(ctx context.Context, in T) (string, error)) *FunctionTool {
	var zero T

	return NewFunctionTool(name, description, func(ctx context.Context, args Args) (string, error) {
		var in T
		if err := Bind(args, &in); err != nil {
			return "", err
		}
		return fn(ctx, in)
	}, func(o *FunctionToolOptions) {
		o.Required = RequiredArgs(zero)
	})
}

// Name returns the tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Required returns the names of required arguments.
func (t *FunctionTool) Required() []string { return append([]string(nil), t.required...) }

// Call validates args then invokes the underlying function.
//
// Error Semantics:
//
//	*ToolError (returned directly)  -> forwarded unchanged
//	*ValidationError                -> *ToolError{Code: "VALIDATION_ERROR"}
//	other error                     -> *ToolError{Code: "EXECUTION_ERROR"}
func (t *FunctionTool) Call(ctx context.Context, args Args) (string, error) {
	logger := core.LoggerFrom(ctx)
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "args", len(args))

	if err := args.Require(t.required...); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())
		return "", t.validationError(err)
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			logger.Error("tool.call.error", "tool", t.name, "error", toolErr.Message)
			return "", toolErr
		}

		var vErr *ValidationError
		if errors.As(err, &vErr) {
			logger.Warn("tool.call.validation_failed", "tool", t.name, "error", vErr.Error())
			return "", t.validationError(vErr)
		}

		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())

		return "", &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
			Details: err,
		}
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

func (t *FunctionTool) validationError(err error) *ToolError {
	return &ToolError{
		Tool:    t.name,
		Message: fmt.Sprintf("argument validation failed: %v", err),
		Code:    CodeValidation,
		Details: err,
	}
}
