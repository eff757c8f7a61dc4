package core

import (
	"strings"
	"time"
)

// History record prefixes. The loop writes entries in exactly this shape and
// the prompt template injects them verbatim.
const (
	ActionPrefix      = "Action: "
	ObservationPrefix = "Observation: "
)

// History is the append-only Action/Observation transcript of a single run.
// Entries are never reordered or mutated once appended. A History is owned by
// one RunContext and is not safe for concurrent use.
type History struct {
	entries []string
}

// AppendAction records an "Action: <text>" entry.
func (h *History) AppendAction(action string) { h.entries = append(h.entries, ActionPrefix+action) }

// AppendObservation records an "Observation: <text>" entry.
func (h *History) AppendObservation(observation string) {
	h.entries = append(h.entries, ObservationPrefix+observation)
}

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Entries returns a copy of the recorded entries in chronological order.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// String joins all entries with newlines for prompt injection.
func (h *History) String() string { return strings.Join(h.entries, "\n") }

// Step is the audit record of one completed iteration. Steps are collected
// for the caller and never read back by the loop.
type Step struct {
	Iteration   int               `json:"iteration"`
	Thought     string            `json:"thought,omitempty"`
	HasThought  bool              `json:"has_thought"`
	Action      string            `json:"action"`
	Observation string            `json:"observation"`
	ToolName    string            `json:"tool_name,omitempty"`
	Args        map[string]string `json:"args,omitempty"`
	// Malformed marks an iteration whose action text could not be parsed
	// into a tool call. Action then holds the raw text verbatim.
	Malformed bool          `json:"malformed,omitempty"`
	Duration  time.Duration `json:"duration"`
}
