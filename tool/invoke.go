package tool

import (
	"context"
	"errors"
	"fmt"
)

// Invoke calls t with args and converts a panic inside the tool into a
// *ToolError with code PANIC. A context deadline hit while the tool runs is
// reported with code TIMEOUT.
func Invoke(ctx context.Context, t Tool, args Args) (result string, err error) {
	if args == nil {
		args = Args{}
	}

	defer func() {
		if r := recover(); r != nil {
			result = ""
			err = &ToolError{
				Tool:    t.Name(),
				Message: fmt.Sprintf("panic: %v", r),
				Code:    CodePanic,
			}
		}
	}()

	result, err = t.Call(ctx, args)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		var toolErr *ToolError
		if !errors.As(err, &toolErr) || toolErr.Code != CodeTimeout {
			return "", &ToolError{
				Tool:    t.Name(),
				Message: "deadline exceeded",
				Code:    CodeTimeout,
				Details: err,
			}
		}
	}
	return result, err
}
