// Package prompt renders the instruction text sent to the reasoning model on
// every iteration of the ReAct loop.
//
// A Template has three slots: the tool catalog, the user's question, and the
// Action/Observation history accumulated so far. Templates use text/template
// syntax ({{.Tools}}, {{.Question}}, {{.History}}) plus a few helper funcs.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Data fills the template slots.
type Data struct {
	// Tools is the rendered tool catalog.
	Tools string
	// Question is the user's original question.
	Question string
	// History is the newline-joined Action/Observation transcript.
	History string
}

// Default is the standard ReAct instruction.
const Default = `Answer the following question as best you can. You have access to the following tools:

{{.Tools}}

Use exactly this format:

Thought: reason about what to do next
Action: one of the following
- tool_name[arg="value", other="value"] to call a tool
- Finish[final answer] once you know the final answer

Emit a single Thought and a single Action per reply, then stop. The result
of a tool call is returned to you as an Observation.

Question: {{.Question}}
{{- if .History}}
{{.History}}
{{- end}}
`

// Template is a parsed prompt template. It is immutable and safe for
// concurrent use.
type Template struct {
	text string
	tmpl *template.Template
}

var funcs = template.FuncMap{
	"default": func(defaultVal any, val any) any {
		if val == nil || val == "" {
			return defaultVal
		}
		return val
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"trim":  strings.TrimSpace,
	"indent": func(n int, s string) string {
		pad := strings.Repeat(" ", n)
		return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
	},
}

// New parses text into a Template.
func New(text string) (*Template, error) {
	tmpl, err := template.New("prompt").Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Template{text: text, tmpl: tmpl}, nil
}

// Must is like New but panics on error. Intended for package-level templates.
func Must(text string) *Template {
	t, err := New(text)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTemplate returns the parsed Default template.
func DefaultTemplate() *Template { return defaultTemplate }

var defaultTemplate = Must(Default)

// Text returns the source of the template.
func (t *Template) Text() string { return t.text }

// Render executes the template with d.
func (t *Template) Render(d Data) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render prompt template: %w", err)
	}
	return buf.String(), nil
}
