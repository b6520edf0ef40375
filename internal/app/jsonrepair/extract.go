// Package jsonrepair isolates and repairs JSON embedded in free-form model
// output. Extract is total: for any input it returns either text that parses
// as a JSON object or array, or the empty string.
package jsonrepair

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

var (
	fencePattern     = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\r?\n?(.*?)```")
	openFencePattern = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\r?\n?(.*)$")
	objectPrefix     = regexp.MustCompile(`^Object\s*`)
)

// Extract returns the most plausible JSON payload in text. It tries the text
// as-is, then a fenced block, then the outermost brace span, then the
// syntactic repairs and closer balancing of Repair. When all of that fails it
// synthesizes a minimal object shaped for kind from whatever name it can
// find. Blank input yields "".
func Extract(text string, kind nutrition.EntityKind) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
		}
	}()

	if strings.TrimSpace(text) == "" {
		return ""
	}
	if repaired, ok := Repair(text); ok {
		return repaired
	}
	return Synthesize(text, kind)
}

// Repair runs the non-synthesizing extraction steps. The boolean reports
// whether the returned text parses.
func Repair(text string) (string, bool) {
	if isJSON(text) {
		return text, true
	}

	work := text
	if fenced, ok := fencedContent(work); ok {
		work = fenced
		if isJSON(work) {
			return strings.TrimSpace(work), true
		}
	}

	work = narrowToSpan(work)
	if isJSON(work) {
		return work, true
	}
	if obj, ok := firstBalanced(work); ok && isJSON(obj) {
		return obj, true
	}

	work = escapeControlChars(trimNonJSON(work))
	work = objectPrefix.ReplaceAllString(work, "")
	if isJSON(work) {
		return work, true
	}

	work = ApplyRepairs(work)
	if isJSON(work) {
		return work, true
	}

	if unexpectedEOF(work) {
		if closed := closeUnbalanced(work); isJSON(closed) {
			return closed, true
		}
	}
	return "", false
}

// isJSON reports whether s parses and is an object or array.
func isJSON(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" || (t[0] != '{' && t[0] != '[') {
		return false
	}
	return json.Valid([]byte(t))
}

func fencedContent(s string) (string, bool) {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	// A truncated response can lose the closing fence.
	if m := openFencePattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

// narrowToSpan cuts s down to the first '{' or '[' through the last '}' or
// ']'. A span with no closer runs to the end so that closer balancing can
// still complete it.
func narrowToSpan(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return strings.TrimSpace(s)
	}
	end := strings.LastIndexAny(s, "}]")
	if end < start {
		return strings.TrimSpace(s[start:])
	}
	return s[start : end+1]
}

// firstBalanced returns the span from the first opener to its matching
// closer, skipping braces inside string literals. It is a single pass.
func firstBalanced(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
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
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// trimNonJSON drops leading characters before the first opener (keeping an
// "Object" marker for the next step) and trailing characters after the last
// closer.
func trimNonJSON(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	if start := strings.IndexAny(s, "{["); start > 0 {
		prefix := strings.TrimSpace(s[:start])
		if prefix == "Object" {
			s = prefix + s[start:]
		} else {
			s = s[start:]
		}
	}
	if end := strings.LastIndexAny(s, "}]"); end >= 0 && end < len(s)-1 {
		if stack, _ := openers(s[:end+1]); len(stack) == 0 {
			s = s[:end+1]
		}
	}
	return s
}

// escapeControlChars rewrites raw control characters inside string literals
// as their escape sequences and drops non-whitespace control characters
// elsewhere.
func escapeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			case r < 0x20:
				b.WriteString(controlEscape(r))
				continue
			}
			b.WriteRune(r)
			continue
		}

		if r == '"' {
			inString = true
		}
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func controlEscape(r rune) string {
	switch r {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	default:
		return `\u00` + strconv.FormatInt(int64(r)>>4, 16) + strconv.FormatInt(int64(r)&0xf, 16)
	}
}

func unexpectedEOF(s string) bool {
	var v any
	err := json.Unmarshal([]byte(s), &v)
	if err == nil {
		return false
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Offset >= int64(len(strings.TrimRight(s, " \t\r\n")))
	}
	return strings.Contains(err.Error(), "unexpected end of JSON input")
}

var danglingTail = regexp.MustCompile(`[,\s]+$`)

// closeUnbalanced terminates an open string literal, drops a dangling comma,
// completes a dangling key with null, and appends the missing closers in
// nesting order.
func closeUnbalanced(s string) string {
	stack, inString := openers(s)
	if inString {
		s += `"`
	}
	s = danglingTail.ReplaceAllString(s, "")
	if strings.HasSuffix(s, ":") {
		s += "null"
	}

	var b strings.Builder
	b.WriteString(s)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
