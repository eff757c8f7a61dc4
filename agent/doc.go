// Package agent implements the ReAct control loop: the model thinks, names an
// action, the agent executes the matching tool and feeds the observation
// back, until the model finishes or the iteration bound is hit.
//
// Execution Model:
//   - ReActAgent holds only immutable configuration (model, registry,
//     template, limits, callbacks) and can serve concurrent Run calls
//   - Each Run creates a private core.RunContext owning the history, the
//     step log and the iteration limiter
//   - Iterations are strictly sequential because every prompt embeds the
//     full history of the previous ones
//
// Failure policy:
//   - Blank or failed reasoning, a reply without an Action, a cancelled
//     context and callback errors abort the run with a *core.RunError
//   - Malformed actions, unknown tools and tool failures are recoverable
//     and surface to the model as observations (malformed actions only when
//     ReportMalformed is set)
//   - Reaching MaxSteps ends the run with StatusExhausted and no error
package agent
