// Package gollm provides an implementation of model.Model on top of
// github.com/teilomillet/gollm, giving the agent access to every provider
// gollm supports (OpenAI, Anthropic, Groq, Ollama, Mistral, ...).
package gollm

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/reactmesh/core"
	"github.com/hupe1980/reactmesh/model"
	"github.com/teilomillet/gollm"
)

// Options configures the gollm adapter.
type Options struct {
	Provider    string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
	MaxRetries  int
	// Extra is appended to the generated gollm configuration.
	Extra []gollm.ConfigOption
}

// Model wraps a gollm.LLM behind the generic model.Model interface.
type Model struct {
	llm  gollm.LLM
	opts Options
}

// NewModel builds a gollm LLM from options.
func NewModel(optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Provider:    "openai",
		MaxTokens:   1024,
		Temperature: 0,
		MaxRetries:  2,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Model == "" {
		opts.Model = defaultModel(opts.Provider)
	}

	cfg := []gollm.ConfigOption{
		gollm.SetProvider(opts.Provider),
		gollm.SetModel(opts.Model),
		gollm.SetMaxTokens(opts.MaxTokens),
		gollm.SetTemperature(opts.Temperature),
		gollm.SetMaxRetries(opts.MaxRetries),
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if opts.APIKey != "" {
		cfg = append(cfg, gollm.SetAPIKey(opts.APIKey))
	}
	cfg = append(cfg, opts.Extra...)

	llm, err := gollm.NewLLM(cfg...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gollm LLM for provider %s: %w", opts.Provider, err)
	}

	return &Model{llm: llm, opts: opts}, nil
}

// NewModelFromLLM wraps an existing gollm.LLM instance.
func NewModelFromLLM(provider, modelName string, llm gollm.LLM) *Model {
	return &Model{llm: llm, opts: Options{Provider: provider, Model: modelName}}
}

func defaultModel(provider string) string {
	switch provider {
	case "anthropic":
		return "claude-3-5-sonnet-20241022"
	case "ollama":
		return "llama3.1"
	default:
		return "gpt-4o-mini"
	}
}

// Think implements model.Model.
func (m *Model) Think(ctx context.Context, messages []core.Message) (string, error) {
	system, input := splitMessages(messages)

	var promptOpts []gollm.PromptOption
	if system != "" {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(system, gollm.CacheTypeEphemeral))
	}

	text, err := m.llm.Generate(ctx, gollm.NewPrompt(input, promptOpts...))
	if err != nil {
		return "", fmt.Errorf("gollm %s generate: %w", m.opts.Provider, err)
	}

	return strings.TrimSpace(text), nil
}

// splitMessages separates system content from the conversational input,
// which gollm takes as a single prompt string.
func splitMessages(messages []core.Message) (system, input string) {
	var sys, parts []string
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			if msg.Content != "" {
				sys = append(sys, msg.Content)
			}
		case core.RoleAssistant:
			if msg.Content != "" {
				parts = append(parts, "[Assistant]: "+msg.Content)
			}
		default:
			parts = append(parts, msg.Content)
		}
	}
	return strings.TrimSpace(strings.Join(sys, "\n")), strings.Join(parts, "\n")
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gollm/" + m.opts.Provider}
}
