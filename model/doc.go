// Package model defines the provider-agnostic reasoning collaborator used by
// the ReAct loop.
//
// A Model receives the rendered prompt as a list of role/content messages and
// returns the raw text of its next Thought/Action. Vendor adapters live in
// sub-packages (openai, anthropic, gollm) so the agent stays decoupled from
// SDKs. MockModel and Func make deterministic tests and examples easy.
package model
