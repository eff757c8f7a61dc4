package testutil

import (
	"fmt"
	"sort"
	"strings"
)

// ReplyBuilder provides a fluent helper for constructing model replies in the
// Thought/Action format.
// Example:
//
//	reply := NewReplyBuilder().Thought("need weather").Call("get_weather", "city", "Beijing").Build()
//
// Chain only the parts you need.
type ReplyBuilder struct {
	lines []string
}

// NewReplyBuilder creates an empty builder.
func NewReplyBuilder() *ReplyBuilder { return &ReplyBuilder{} }

// Thought appends a "Thought:" line (chainable).
func (b *ReplyBuilder) Thought(t string) *ReplyBuilder {
	b.lines = append(b.lines, "Thought: "+t)
	return b
}

// Action appends an "Action:" line with raw action text (chainable).
func (b *ReplyBuilder) Action(a string) *ReplyBuilder {
	b.lines = append(b.lines, "Action: "+a)
	return b
}

// Call appends a tool-call action built from alternating key/value pairs,
// emitted in sorted key order (chainable).
func (b *ReplyBuilder) Call(tool string, kv ...string) *ReplyBuilder {
	return b.Action(FormatCall(tool, kv...))
}

// Finish appends a finish action carrying answer (chainable).
func (b *ReplyBuilder) Finish(answer string) *ReplyBuilder {
	return b.Action(fmt.Sprintf("Finish[%s]", answer))
}

// Line appends free text (chainable).
func (b *ReplyBuilder) Line(s string) *ReplyBuilder {
	b.lines = append(b.lines, s)
	return b
}

// Build joins the lines with newlines.
func (b *ReplyBuilder) Build() string { return strings.Join(b.lines, "\n") }

// FormatCall renders tool[k="v", ...] with keys sorted. A trailing key
// without value is ignored.
func FormatCall(tool string, kv ...string) string {
	pairs := map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		pairs[kv[i]] = kv[i+1]
	}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, pairs[k])
	}
	return fmt.Sprintf("%s[%s]", tool, strings.Join(parts, ", "))
}
