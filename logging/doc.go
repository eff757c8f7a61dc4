// Package logging provides a minimal logging interface and adapters for reactmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the agent loop and tools use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - RunLogger with run-scoped attributes and loop specific helpers
//   - ZapAdapter wrapping go.uber.org/zap
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	a := agent.NewReActAgent("travel", m, registry, func(o *agent.ReActAgentOptions) {
//		o.Logger = logger
//	})
//
// All adapters take alternating key/value arguments after the message, the
// same convention used by log/slog and zap's SugaredLogger.
package logging
