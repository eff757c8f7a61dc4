package action

import (
	"strings"
	"unicode/utf8"
)

// Parse interprets one action string. It never panics; text that matches
// neither the finish nor the tool-call grammar yields KindUnparseable with
// the original text kept in Raw.
//
// Surrounding backticks and quotes are ignored. When the action does not
// start with a call, the first identifier directly followed by '[' or '('
// is used, so prose such as "I will call search[...]" still resolves.
func Parse(text string) Action {
	src := trimDecoration(text)
	if src == "" {
		return unparseable(text, "empty action")
	}

	s := &scanner{src: src}
	name := s.ident()
	s.skipSpace()

	if name != "" && strings.EqualFold(name, FinishKeyword) {
		return parseFinish(text, s)
	}

	if name == "" || !isGroupOpen(s.peek()) {
		found, call, ok := findCall(src)
		if !ok {
			if name == "" {
				return unparseable(text, "missing tool name")
			}
			return unparseable(text, "missing argument list")
		}
		s, name = found, call
		if strings.EqualFold(name, FinishKeyword) {
			return parseFinish(text, s)
		}
	}

	inner, ok := s.group()
	if !ok {
		return unparseable(text, "unclosed argument list")
	}

	return toolCall(text, name, parseArgs(inner))
}

func isGroupOpen(r rune) bool { return r == '[' || r == '(' }

// findCall returns a scanner positioned at the group of the first
// identifier in src that is immediately followed by '[' or '('.
func findCall(src string) (*scanner, string, bool) {
	s := &scanner{src: src}
	prev := ' '
	for !s.eof() {
		r := s.peek()
		if isIdentStart(r) && !isIdentPart(prev) {
			name := s.ident()
			if isGroupOpen(s.peek()) {
				return s, name, true
			}
			prev, _ = utf8.DecodeLastRuneInString(name)
			continue
		}
		prev = r
		s.advance()
	}
	return nil, "", false
}

// trimDecoration strips whitespace, markdown backticks and a pair of
// enclosing quotes around an action.
func trimDecoration(text string) string {
	v := strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "`"))
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if first == last && (first == '"' || first == '\'') {
			v = strings.TrimSpace(v[1 : len(v)-1])
		}
	}
	return v
}

func parseFinish(raw string, s *scanner) Action {
	var payload string
	switch s.peek() {
	case '[', '(':
		closeRune := closerFor(s.peek())
		start := s.pos + 1
		inner, ok := s.group()
		if !ok {
			return unparseable(raw, "unclosed finish argument")
		}
		payload = inner
		// Text after the balanced group belongs to the answer when another
		// closer follows; the payload then runs to the last one.
		if strings.TrimSpace(s.rest()) != "" {
			if end := strings.LastIndexByte(s.src, byte(closeRune)); end >= s.pos {
				payload = s.src[start:end]
				s.pos = end + 1
			}
		}
	case ':':
		s.advance()
		payload = s.rest()
	default:
		payload = s.rest()
	}

	payload = strings.TrimSpace(payload)
	if payload == "" {
		return unparseable(raw, "finish without answer")
	}

	return finish(raw, finishAnswer(payload))
}

// finishAnswer unwraps the named form answer="..." and surrounding quotes.
func finishAnswer(payload string) string {
	s := &scanner{src: payload}
	if key := s.ident(); strings.EqualFold(key, "answer") {
		s.skipSpace()
		if s.peek() == '=' {
			s.advance()
			s.skipSpace()
			if v, ok := s.quoted(); ok && strings.TrimSpace(s.rest()) == "" {
				return v
			}
			return unquote(strings.TrimSpace(s.rest()))
		}
	}
	return unquote(payload)
}

// unquote unwraps v only when it is one complete quoted string.
func unquote(v string) string {
	s := &scanner{src: v}
	if q, ok := s.quoted(); ok && s.eof() {
		return q
	}
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' && !strings.ContainsRune(v[1:len(v)-1], '\'') {
		return v[1 : len(v)-1]
	}
	return v
}

// parseArgs scans key="value" pairs, skipping anything in between.
// Duplicate keys keep the last value.
func parseArgs(inner string) map[string]string {
	args := map[string]string{}
	s := &scanner{src: inner}

	for !s.eof() {
		start := s.pos
		key := s.ident()
		if key == "" {
			s.advance()
			continue
		}

		s.skipSpace()
		if s.peek() == '=' {
			s.advance()
			s.skipSpace()
			if v, ok := s.quoted(); ok {
				args[key] = v
				continue
			}
		}

		// Not a pair; resume right after the identifier.
		s.pos = start + len(key)
	}

	return args
}
