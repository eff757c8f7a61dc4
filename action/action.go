package action

import (
	"fmt"
	"sort"
	"strings"
)

// Kind discriminates the Action variants.
type Kind int

const (
	// KindUnparseable marks action text from which no finish or tool call
	// could be extracted.
	KindUnparseable Kind = iota
	// KindFinish marks a terminal action carrying the final answer.
	KindFinish
	// KindToolCall marks a request to invoke a named tool.
	KindToolCall
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindFinish:
		return "finish"
	case KindToolCall:
		return "tool_call"
	default:
		return "unparseable"
	}
}

// FinishKeyword is the identifier that signals completion.
const FinishKeyword = "Finish"

// Action is the tagged result of Parse. Only the fields belonging to Kind are
// populated; callers must branch on Kind before reading them.
type Action struct {
	Kind Kind

	// Answer is the final answer of a Finish action.
	Answer string

	// Tool and Args describe a ToolCall. Args is never nil for a ToolCall.
	Tool string
	Args map[string]string

	// Reason explains why the text was Unparseable.
	Reason string

	// Raw is the action text exactly as it was given to Parse.
	Raw string
}

// IsFinish reports whether the action ends the run.
func (a Action) IsFinish() bool { return a.Kind == KindFinish }

// IsToolCall reports whether the action requests a tool invocation.
func (a Action) IsToolCall() bool { return a.Kind == KindToolCall }

// IsUnparseable reports whether the action text could not be interpreted.
func (a Action) IsUnparseable() bool { return a.Kind == KindUnparseable }

// String renders the action in canonical form with arguments sorted by key.
func (a Action) String() string {
	switch a.Kind {
	case KindFinish:
		return fmt.Sprintf("%s[%s]", FinishKeyword, a.Answer)
	case KindToolCall:
		keys := make([]string, 0, len(a.Args))
		for k := range a.Args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s=%q", k, a.Args[k])
		}
		return fmt.Sprintf("%s[%s]", a.Tool, strings.Join(pairs, ", "))
	default:
		return fmt.Sprintf("unparseable(%s): %s", a.Reason, a.Raw)
	}
}

func finish(raw, answer string) Action {
	return Action{Kind: KindFinish, Answer: answer, Raw: raw}
}

func toolCall(raw, name string, args map[string]string) Action {
	return Action{Kind: KindToolCall, Tool: name, Args: args, Raw: raw}
}

func unparseable(raw, reason string) Action {
	return Action{Kind: KindUnparseable, Reason: reason, Raw: raw}
}
