package action

import (
	"regexp"
	"strings"
)

var blankLines = regexp.MustCompile(`\n{3,}`)

// StripMarkup removes every recognized tagged block, and an untagged JSON
// tail with a known family shape, from text. The remaining prose is trimmed.
func (d *Detector) StripMarkup(text string) string {
	out := text
	for _, p := range d.strip {
		out = p.pattern.ReplaceAllString(out, "")
	}

	if candidate, obj, ok := trailingObject(out); ok {
		for _, f := range d.families {
			if f.Shape(obj) {
				out = strings.TrimSuffix(strings.TrimRight(out, " \t\r\n"), candidate)
				break
			}
		}
	}

	return strings.TrimSpace(blankLines.ReplaceAllString(out, "\n\n"))
}
