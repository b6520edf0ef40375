// Package action finds structured create intents embedded in free-form model
// output and strips their markup from the prose shown to users.
package action

import (
	"regexp"
	"strings"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

// TagSet describes how one action family is delimited. Adding an action
// family is a new TagSet, not new matching code.
type TagSet struct {
	Action nutrition.ActionKind
	Kind   nutrition.EntityKind
	Start  string
	End    string
	// Alternatives are tolerated start tags. Each is tried with End and with
	// an end tag derived from it.
	Alternatives []string
	// Shape reports whether an untagged object looks like this family.
	Shape func(map[string]any) bool
}

// TagTable is an ordered list of families. Earlier families win when text
// matches more than one.
type TagTable []TagSet

// DefaultTags returns the built-in table for meals, plans and ingredients.
func DefaultTags() TagTable {
	return TagTable{
		{
			Action:       nutrition.ActionAddMeal,
			Kind:         nutrition.KindMeal,
			Start:        "<ADD_MEAL>",
			End:          "</ADD_MEAL>",
			Alternatives: []string{"<ADD-MEAL>", "<<ADD_MEAL>>", "<MEAL>", "<AJOUTER_REPAS>"},
			Shape:        mealShaped,
		},
		{
			Action:       nutrition.ActionAddPlan,
			Kind:         nutrition.KindPlan,
			Start:        "<ADD_PLAN>",
			End:          "</ADD_PLAN>",
			Alternatives: []string{"<ADD-PLAN>", "<<ADD_PLAN>>", "<PLAN>", "<AJOUTER_PLAN>"},
			Shape:        planShaped,
		},
		{
			Action:       nutrition.ActionAddIngredient,
			Kind:         nutrition.KindIngredient,
			Start:        "<ADD_INGREDIENT>",
			End:          "</ADD_INGREDIENT>",
			Alternatives: []string{"<ADD-INGREDIENT>", "<<ADD_INGREDIENT>>", "<INGREDIENT>", "<AJOUTER_INGREDIENT>"},
			Shape:        ingredientShaped,
		},
	}
}

// DeriveEndTag turns a start tag into its closing form: the first '<'
// becomes "</" and the first '-' becomes '_'.
func DeriveEndTag(start string) string {
	end := strings.Replace(start, "<", "</", 1)
	return strings.Replace(end, "-", "_", 1)
}

// nestedEndTag closes a start tag that opens with a run of '<' by putting the
// slash after the run, so "<<ADD_PLAN>>" closes as "<</ADD_PLAN>>".
func nestedEndTag(start string) (string, bool) {
	n := len(start) - len(strings.TrimLeft(start, "<"))
	if n < 2 {
		return "", false
	}
	return strings.Replace(start[:n]+"/"+start[n:], "-", "_", 1), true
}

func has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func mealShaped(m map[string]any) bool {
	return has(m, "type") && (has(m, "ingredients") || has(m, "cuisine"))
}

func planShaped(m map[string]any) bool {
	return has(m, "goal")
}

func ingredientShaped(m map[string]any) bool {
	return has(m, "unit") && !has(m, "ingredients")
}

// tagPair is one compiled start/end combination.
type tagPair struct {
	start, end string
	pattern    *regexp.Regexp
}

func compilePair(start, end string) tagPair {
	return tagPair{
		start:   start,
		end:     end,
		pattern: regexp.MustCompile(`(?is)` + regexp.QuoteMeta(start) + `(.*?)` + regexp.QuoteMeta(end)),
	}
}

// pairs returns the combinations tried for a family, in matching order:
// the primary pair, then each alternative with its nested end tag (doubled
// brackets only), the primary end tag and its derived end tag.
func (ts TagSet) pairs() []tagPair {
	out := []tagPair{compilePair(ts.Start, ts.End)}
	for _, alt := range ts.Alternatives {
		if nested, ok := nestedEndTag(alt); ok {
			out = append(out, compilePair(alt, nested))
		}
		out = append(out, compilePair(alt, ts.End))
		if derived := DeriveEndTag(alt); !strings.EqualFold(derived, ts.End) {
			out = append(out, compilePair(alt, derived))
		}
	}
	return out
}
