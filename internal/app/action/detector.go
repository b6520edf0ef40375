package action

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/jsamuelsen11/mealplan-assistant/internal/app/jsonrepair"
	"github.com/jsamuelsen11/mealplan-assistant/internal/app/schema"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

// Detection is the result of scanning one piece of text. It is never mutated
// after Detect returns it.
type Detection struct {
	Kind       nutrition.ActionKind
	RawPayload string
	IsValid    bool
	// ValidationMessage is safe to show users. Field-level detail is in
	// Errors and Err.
	ValidationMessage string
	Entity            nutrition.Entity
	Errors            []schema.FieldError
	Err               *domain.Error
	// Tagged is false when the payload came from the untagged JSON scan.
	Tagged bool
}

// None reports whether no action was found.
func (d Detection) None() bool {
	return d.Kind == nutrition.ActionNone
}

// bareObjectStart finds where an untagged {"name": "...", object begins.
var bareObjectStart = regexp.MustCompile(`\{\s*"name"\s*:\s*"[^"]+"\s*,`)

// planHints mark meal-tagged text that is really describing a plan.
var planHints = []string{"nutrition plan", "plan nutritionnel", "plan alimentaire", "durationweeks"}

type family struct {
	TagSet
	pairs []tagPair
}

// Detector scans text for action blocks. It holds only immutable state and
// is safe for concurrent use.
type Detector struct {
	families  []family
	validator *schema.Validator
	// strip holds every pair, longest first, so doubled tags are removed
	// whole rather than leaving stray brackets.
	strip []tagPair
}

// NewDetector compiles tags and binds the validator used on found payloads.
func NewDetector(v *schema.Validator, tags TagTable) *Detector {
	d := &Detector{validator: v}
	for _, ts := range tags {
		f := family{TagSet: ts, pairs: ts.pairs()}
		d.families = append(d.families, f)
		d.strip = append(d.strip, f.pairs...)
	}
	slices.SortStableFunc(d.strip, func(a, b tagPair) int {
		return len(b.start) + len(b.end) - len(a.start) - len(a.end)
	})
	return d
}

// Detect finds the first action in text. Tagged blocks are tried for every
// family before the untagged scan, which only accepts a JSON object that ends
// the text and has the family's shape. The payload is repaired and then
// strictly validated. Absence of an action is a valid None detection. Detect
// never panics; an internal fault yields an invalid None detection.
func (d *Detector) Detect(text string) (det Detection) {
	defer func() {
		if r := recover(); r != nil {
			err := domain.Classify(fmt.Errorf("%v", r), "action detection failed", domain.KindUnknown, nil, false)
			det = Detection{
				Kind:              nutrition.ActionNone,
				ValidationMessage: domain.FormatForUser(err),
				Err:               err,
			}
		}
	}()

	for _, f := range d.families {
		if payload, ok := f.tagged(text); ok {
			return d.validate(f, payload, text, true)
		}
	}
	for _, f := range d.families {
		if payload, ok := f.bare(text); ok {
			return d.validate(f, payload, text, false)
		}
	}
	return Detection{Kind: nutrition.ActionNone, IsValid: true}
}

func (d *Detector) validate(f family, payload, text string, tagged bool) Detection {
	if f.Kind == nutrition.KindMeal && mentionsPlan(text) {
		if det := d.validateAs(nutrition.ActionAddPlan, nutrition.KindPlan, payload, tagged); det.IsValid {
			return det
		}
	}
	return d.validateAs(f.Action, f.Kind, payload, tagged)
}

func (d *Detector) validateAs(action nutrition.ActionKind, kind nutrition.EntityKind, payload string, tagged bool) Detection {
	det := Detection{Kind: action, RawPayload: payload, Tagged: tagged}

	out := d.validator.Validate(jsonrepair.Extract(payload, kind), kind)
	if out.Success {
		det.IsValid = true
		det.Entity = out.Entity
		return det
	}
	det.Errors = out.Errors
	det.Err = out.Err
	det.ValidationMessage = domain.FormatForUser(out.Err)
	return det
}

func mentionsPlan(text string) bool {
	lower := strings.ToLower(text)
	for _, hint := range planHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// tagged returns the trimmed content of the first non-empty block matching
// one of the family's tag pairs.
func (f family) tagged(text string) (string, bool) {
	for _, p := range f.pairs {
		for _, m := range p.pattern.FindAllStringSubmatch(text, -1) {
			if payload := cleanPayload(m[1]); payload != "" {
				return payload, true
			}
		}
	}
	return "", false
}

// cleanPayload trims whitespace and stray angle brackets left by doubled
// tags such as <<ADD_MEAL>>.
func cleanPayload(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "<>"))
}

// bare returns an untagged JSON object ending the text when its shape matches
// the family.
func (f family) bare(text string) (string, bool) {
	candidate, obj, ok := trailingObject(text)
	if !ok || !f.Shape(obj) {
		return "", false
	}
	return candidate, true
}

// trailingObject finds the earliest {"name": "...", ...} span that runs to
// the end of text, ignoring trailing whitespace, and decodes it. Commentary
// after the object means nothing is found.
func trailingObject(text string) (string, map[string]any, bool) {
	trimmed := strings.TrimRight(text, " \t\r\n")
	if !strings.HasSuffix(trimmed, "}") {
		return "", nil, false
	}
	for _, loc := range bareObjectStart.FindAllStringIndex(trimmed, -1) {
		candidate := trimmed[loc[0]:]
		if obj, ok := decodeObject(candidate); ok {
			return candidate, obj, true
		}
	}
	return "", nil, false
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err == nil && obj != nil {
		return obj, true
	}
	if err := json.Unmarshal([]byte(jsonrepair.ApplyRepairs(s)), &obj); err == nil && obj != nil {
		return obj, true
	}
	return nil, false
}
