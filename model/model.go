package model

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/reactmesh/core"
)

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "gollm", "mock", ...
}

// Model is the reasoning collaborator driven by the agent loop.
type Model interface {
	// Think returns the model's raw text for the given messages. An error or
	// a blank result means no reasoning is available for this turn.
	Think(ctx context.Context, messages []core.Message) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// ErrScriptExhausted is returned by MockModel once every scripted turn has
// been consumed.
var ErrScriptExhausted = errors.New("mock model: no scripted response left")

type turn struct {
	text string
	err  error
}

// MockModel is a lightweight in-memory Model useful for tests & examples. It
// replays scripted turns in order and records every call it receives.
type MockModel struct {
	info Info

	mu    sync.Mutex
	turns []turn
	next  int
	calls [][]core.Message
}

// NewMockModel constructs a MockModel that answers with responses in order.
func NewMockModel(name string, responses ...string) *MockModel {
	m := &MockModel{info: Info{Name: name, Provider: "mock"}}
	for _, r := range responses {
		m.AddResponse(r)
	}
	return m
}

// AddResponse appends a scripted completion.
func (m *MockModel) AddResponse(text string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, turn{text: text})
	return m
}

// AddError appends a scripted failure.
func (m *MockModel) AddError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, turn{err: err})
	return m
}

// Think implements Model.
func (m *MockModel) Think(ctx context.Context, messages []core.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, append([]core.Message(nil), messages...))

	if m.next >= len(m.turns) {
		return "", ErrScriptExhausted
	}
	t := m.turns[m.next]
	m.next++

	return t.text, t.err
}

// Calls returns a copy of the messages received by each Think call.
func (m *MockModel) Calls() [][]core.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]core.Message, len(m.calls))
	copy(out, m.calls)
	return out
}

// Prompts returns the content of the last message of each call, which is
// the rendered prompt when driven by the agent.
func (m *MockModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.calls))
	for _, msgs := range m.calls {
		if len(msgs) == 0 {
			out = append(out, "")
			continue
		}
		out = append(out, msgs[len(msgs)-1].Content)
	}
	return out
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

// Func adapts a plain function to the Model interface.
type Func func(ctx context.Context, messages []core.Message) (string, error)

// Think implements Model.
func (f Func) Think(ctx context.Context, messages []core.Message) (string, error) {
	return f(ctx, messages)
}

// Info implements Model.
func (f Func) Info() Info { return Info{Name: "func", Provider: "func"} }

// LastUserContent returns the content of the last user message, or "".
func LastUserContent(messages []core.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == core.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// SystemContent concatenates all system messages separated by blank lines.
func SystemContent(messages []core.Message) string {
	var out string
	for _, m := range messages {
		if m.Role != core.RoleSystem || m.Content == "" {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += m.Content
	}
	return out
}
