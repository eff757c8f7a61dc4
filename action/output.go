package action

import "strings"

// Output is the result of stage A: the thought and the raw action text of one
// round of model output. Has* report whether the marker was present with a
// non-empty value.
type Output struct {
	Thought    string
	HasThought bool
	Action     string
	HasAction  bool
}

const (
	thoughtMarker = "thought:"
	actionMarker  = "action:"
)

// ParseOutput extracts the first Thought and the first Action from text.
//
// A marker counts only at the start of a line, after optional whitespace and
// markdown decoration ('*', '>', '#', '`'). The value is the rest of the line;
// backticks or quotes wrapping an action are dropped.
// An action that opens a bracket without closing it on the same line extends
// over the following lines until the bracket closes or the text ends.
func ParseOutput(text string) Output {
	var out Output

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := 0; i < len(lines); i++ {
		marker, value, ok := splitMarker(lines[i])
		if !ok {
			continue
		}

		switch marker {
		case thoughtMarker:
			if out.HasThought {
				continue
			}
			if v := strings.TrimSpace(value); v != "" {
				out.Thought, out.HasThought = v, true
			}
		case actionMarker:
			if out.HasAction {
				continue
			}
			for depth := bracketDepth(value); depth > 0 && i+1 < len(lines); depth = bracketDepth(value) {
				i++
				value += "\n" + lines[i]
			}
			if v := trimDecoration(value); v != "" {
				out.Action, out.HasAction = v, true
			}
		}

		if out.HasThought && out.HasAction {
			break
		}
	}

	return out
}

func splitMarker(line string) (string, string, bool) {
	trimmed := strings.TrimLeft(line, " \t*>#`")

	for _, marker := range []string{thoughtMarker, actionMarker} {
		if len(trimmed) >= len(marker) && strings.EqualFold(trimmed[:len(marker)], marker) {
			value := trimmed[len(marker):]
			return marker, strings.TrimLeft(value, " \t*"), true
		}
	}

	return "", "", false
}

// bracketDepth returns the number of '[' and '(' left open in s, ignoring
// characters inside double-quoted strings.
func bracketDepth(s string) int {
	depth := 0
	inQuote := false
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inQuote:
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[' || r == '(':
			depth++
		case r == ']' || r == ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}
