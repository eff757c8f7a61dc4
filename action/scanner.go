package action

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// scanner is a rune cursor over an immutable input string.
type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() rune {
	if s.eof() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return r
}

func (s *scanner) advance() {
	if s.eof() {
		return
	}
	_, size := utf8.DecodeRuneInString(s.src[s.pos:])
	s.pos += size
}

func (s *scanner) rest() string {
	if s.eof() {
		return ""
	}
	return s.src[s.pos:]
}

func (s *scanner) skipSpace() {
	for !s.eof() && unicode.IsSpace(s.peek()) {
		s.advance()
	}
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ident consumes an identifier and returns it, or "" without moving when the
// cursor is not at an identifier start.
func (s *scanner) ident() string {
	if s.eof() || !isIdentStart(s.peek()) {
		return ""
	}
	start := s.pos
	for !s.eof() && isIdentPart(s.peek()) {
		s.advance()
	}
	return s.src[start:s.pos]
}

// quoted consumes a double-quoted string with \" and \\ escapes. On failure
// the cursor is restored.
func (s *scanner) quoted() (string, bool) {
	if s.peek() != '"' {
		return "", false
	}
	start := s.pos
	s.advance()

	var b strings.Builder
	for !s.eof() {
		r := s.peek()
		s.advance()
		switch r {
		case '\\':
			if next := s.peek(); next == '"' || next == '\\' {
				b.WriteRune(next)
				s.advance()
				continue
			}
			b.WriteRune(r)
		case '"':
			return b.String(), true
		default:
			b.WriteRune(r)
		}
	}

	s.pos = start
	return "", false
}

func closerFor(open rune) rune {
	switch open {
	case '[':
		return ']'
	case '(':
		return ')'
	default:
		return utf8.RuneError
	}
}

// group consumes a bracketed group starting at the cursor and returns its
// inner text. The matching closer is found by depth counting outside quoted
// strings; when that fails the last closer in the input is used, so stray
// quotes inside the group do not lose the argument list.
func (s *scanner) group() (string, bool) {
	open := s.peek()
	closeRune := closerFor(open)
	if closeRune == utf8.RuneError {
		return "", false
	}
	s.advance()
	start := s.pos

	if end, ok := matchClose(s.src, start, open, closeRune); ok {
		s.pos = end + 1
		return s.src[start:end], true
	}

	end := strings.LastIndexByte(s.src, byte(closeRune))
	if end < start {
		s.pos = start - 1
		return "", false
	}
	s.pos = end + 1
	return s.src[start:end], true
}

func matchClose(src string, from int, open, closeRune rune) (int, bool) {
	depth := 1
	inQuote := false
	escaped := false
	for i, r := range src[from:] {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inQuote:
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == open:
			depth++
		case r == closeRune:
			depth--
			if depth == 0 {
				return from + i, true
			}
		}
	}
	return 0, false
}
