// Package tool defines the capabilities a ReAct agent can invoke by name.
//
// Every tool has the same uniform shape: it receives a flat map of string
// arguments parsed from the model's action text and returns a string
// observation. The Registry holds the tools available to an agent and renders
// the catalog shown to the model.
package tool

import (
	"context"
	"fmt"
)

// Args are the named string arguments of one tool call.
type Args map[string]string

// Tool is a named capability invocable by the agent loop.
//
// Implementations must be safe for concurrent use: a single registry may be
// shared by runs executing in parallel.
type Tool interface {
	// Name returns the identifier the model uses to call the tool.
	Name() string

	// Description is shown to the model in the tool catalog.
	Description() string

	// Call executes the tool. The returned string becomes the observation.
	// ctx carries a *core.ToolContext when invoked by the agent.
	Call(ctx context.Context, args Args) (string, error)
}

// Error codes carried by ToolError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodePanic      = "PANIC"
	CodeTimeout    = "TIMEOUT"
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Unwrap exposes Details when it is an error.
func (e *ToolError) Unwrap() error {
	if err, ok := e.Details.(error); ok {
		return err
	}
	return nil
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
