package jsonrepair

import (
	"regexp"
	"strings"
)

var (
	quotedKeyPattern     = regexp.MustCompile(`'(\w+)'(\s*):`)
	bareKeyPattern       = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*):`)
	singleQuotedValue    = regexp.MustCompile(`(:\s*)'([^'"\n]*)'`)
	trailingCommaPattern = regexp.MustCompile(`(?:,\s*)+([}\]])`)
	nullLikePattern      = regexp.MustCompile(`\b(?:None|undefined|NaN)\b`)
	pythonTruePattern    = regexp.MustCompile(`\bTrue\b`)
	pythonFalsePattern   = regexp.MustCompile(`\bFalse\b`)
	numericStringPattern = regexp.MustCompile(`"(calories|carbs|protein|fat|quantity)"(\s*:\s*)"\s*(-?\d+(?:\.\d+)?)\s*"`)
	bareValuePattern     = regexp.MustCompile(`(:\s*)([A-Za-z_][^,}\]\n]*?)(\s*)([,}\]\n]|$)`)
	adjacentObjects      = regexp.MustCompile(`([}\]])(\s*)([{\[])`)
	valueBeforeQuoteTail = regexp.MustCompile(`([}\]\d]|\btrue|\bfalse|\bnull)(\s+)$`)
	bareLiteralValue     = regexp.MustCompile(`^(?:true|false|null)$`)
)

// repair is one named syntactic fix. Every repair maps its own output to
// itself, which keeps the whole sequence a fixed point.
type repair struct {
	name string
	fn   func(string) string
}

// repairs is the ordered sequence ApplyRepairs runs.
var repairs = []repair{
	{"normalize key quotes", normalizeKeyQuotes},
	{"remove trailing commas", removeTrailingCommas},
	{"replace null-like tokens", replaceNullLike},
	{"unquote numeric fields", unquoteNumericFields},
	{"quote bare values", quoteBareValues},
	{"insert missing commas", insertMissingCommas},
}

// ApplyRepairs runs every syntactic repair in order. Applying it twice yields
// the same text as applying it once.
func ApplyRepairs(s string) string {
	for _, r := range repairs {
		s = r.fn(s)
	}
	return s
}

// normalizeKeyQuotes rewrites 'key': and bare key: into "key": and
// single-quoted scalar values into double-quoted ones.
func normalizeKeyQuotes(s string) string {
	s = mapOutside(s, func(out string) string {
		out = quotedKeyPattern.ReplaceAllString(out, `"$1"$2:`)
		return singleQuotedValue.ReplaceAllString(out, `$1"$2"`)
	})
	return mapOutside(s, func(out string) string {
		return bareKeyPattern.ReplaceAllString(out, `$1"$2"$3:`)
	})
}

func removeTrailingCommas(s string) string {
	return mapOutside(s, func(out string) string {
		return trailingCommaPattern.ReplaceAllString(out, "$1")
	})
}

func replaceNullLike(s string) string {
	return mapOutside(s, func(out string) string {
		out = nullLikePattern.ReplaceAllString(out, "null")
		out = pythonTruePattern.ReplaceAllString(out, "true")
		return pythonFalsePattern.ReplaceAllString(out, "false")
	})
}

// unquoteNumericFields turns "calories": "250" into "calories": 250 for the
// known numeric nutrition fields.
func unquoteNumericFields(s string) string {
	return numericStringPattern.ReplaceAllString(s, `"$1"$2$3`)
}

// quoteBareValues wraps unquoted word values in double quotes. Literals true,
// false and null stay bare.
func quoteBareValues(s string) string {
	return mapOutside(s, func(out string) string {
		return bareValuePattern.ReplaceAllStringFunc(out, func(m string) string {
			sub := bareValuePattern.FindStringSubmatch(m)
			value := strings.TrimSpace(strings.ReplaceAll(sub[2], "\t", " "))
			if value == "" || bareLiteralValue.MatchString(value) {
				return m
			}
			return sub[1] + `"` + strings.ReplaceAll(value, `\`, `\\`) + `"` + sub[3] + sub[4]
		})
	})
}

// insertMissingCommas patches junctions such as `} {`, `"a" "b"` and
// `1 "next"` where a separator was dropped.
func insertMissingCommas(s string) string {
	segs := split(s)
	for i := range segs {
		if segs[i].quoted {
			continue
		}
		segs[i].text = adjacentObjects.ReplaceAllString(segs[i].text, "$1,$2$3")

		nextQuoted := i+1 < len(segs) && segs[i+1].quoted
		if !nextQuoted {
			continue
		}
		prevQuoted := i > 0 && segs[i-1].quoted
		switch {
		case prevQuoted && strings.TrimSpace(segs[i].text) == "":
			// "a" "b"
			segs[i].text = "," + segs[i].text
		case valueBeforeQuoteTail.MatchString(segs[i].text):
			// } "b", 1 "b", true "b"
			segs[i].text = valueBeforeQuoteTail.ReplaceAllString(segs[i].text, "$1,$2")
		}
	}
	for i := 1; i < len(segs); i++ {
		if segs[i].quoted && segs[i-1].quoted {
			// "a""b" with nothing between them
			segs[i].text = "," + segs[i].text
		}
	}
	return join(segs)
}
