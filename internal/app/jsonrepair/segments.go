package jsonrepair

import "strings"

// segment is a run of text that is either a double-quoted JSON string literal
// (quotes included) or everything between such literals.
type segment struct {
	text   string
	quoted bool
}

// split breaks s into alternating quoted and unquoted segments. Backslash
// escapes inside literals are honoured; an unterminated literal runs to the
// end of s.
func split(s string) []segment {
	var segs []segment
	start := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				segs = append(segs, segment{text: s[start : i+1], quoted: true})
				start = i + 1
				inString = false
			}
			continue
		}
		if c == '"' {
			if i > start {
				segs = append(segs, segment{text: s[start:i]})
			}
			start = i
			inString = true
		}
	}
	if start < len(s) {
		segs = append(segs, segment{text: s[start:], quoted: inString})
	}
	return segs
}

func join(segs []segment) string {
	var b strings.Builder
	for _, sg := range segs {
		b.WriteString(sg.text)
	}
	return b.String()
}

// mapOutside applies fn to every unquoted segment of s, leaving string
// literals untouched.
func mapOutside(s string, fn func(string) string) string {
	segs := split(s)
	for i := range segs {
		if !segs[i].quoted {
			segs[i].text = fn(segs[i].text)
		}
	}
	return join(segs)
}

// openers returns the stack of unmatched '{' and '[' outside string literals,
// and whether s ends inside an unterminated literal.
func openers(s string) (stack []byte, inString bool) {
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return stack, inString
}
