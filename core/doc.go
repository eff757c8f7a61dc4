// Package core provides the foundational data model shared by the reactmesh
// packages. It defines:
//
//   - Message (role + content pairs handed to the reasoning model)
//   - History (the append-only Action/Observation transcript of one run)
//   - Step (the audit record of one completed iteration)
//   - RunContext (the explicit per-invocation execution scope)
//   - StepLimiter (the hard iteration bound)
//
// The package keeps parsing, tool dispatch and model access out of scope so the
// agent, action, tool and model packages can depend on it without cycles.
package core
