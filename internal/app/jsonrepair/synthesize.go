package jsonrepair

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

// maxNameLineLength bounds the free-text line accepted as a name.
const maxNameLineLength = 50

var (
	nameFieldPattern = regexp.MustCompile(`["']?name["']?\s*:\s*["']([^"'\n]+)["']`)
	titleLinePattern = regexp.MustCompile(`(?im)^\s*(?:title|titre)\s*:\s*(.+?)\s*$`)
	mealTypePattern  = regexp.MustCompile(`(?i)\b(BREAKFAST|LUNCH|DINNER|SNACK)\b`)
	goalPattern      = regexp.MustCompile(`(?i)\b(WEIGHT_LOSS|GAIN_MUSCLE|MAINTAIN)\b`)
	markdownNoise    = regexp.MustCompile(`^[#*>\-\s]+|[*_]+$`)
)

// Synthesize builds the minimal object of last resort: the best name it can
// find in text plus kind-appropriate defaults. Meal-shaped output is used
// when kind is not a known entity kind.
func Synthesize(text string, kind nutrition.EntityKind) string {
	name := synthName(text, kind)

	var v any
	switch kind {
	case nutrition.KindPlan:
		goal := nutrition.GoalMaintain
		if m := goalPattern.FindStringSubmatch(text); m != nil {
			goal = nutrition.Goal(strings.ToUpper(m[1]))
		}
		v = nutrition.Plan{Name: name, Goal: goal, Meals: []nutrition.Meal{}}
	case nutrition.KindIngredient:
		v = nutrition.Ingredient{Name: name, Unit: nutrition.UnitGrams, Quantity: 100}
	default:
		mealType := nutrition.MealDinner
		if m := mealTypePattern.FindStringSubmatch(text); m != nil {
			mealType = nutrition.MealType(strings.ToUpper(m[1]))
		}
		v = nutrition.Meal{
			Name:        name,
			Type:        mealType,
			Cuisine:     nutrition.CuisineGeneral,
			Unit:        nutrition.UnitGrams,
			Quantity:    1,
			Ingredients: []nutrition.Ingredient{},
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// synthName tries a "name" field, then a title line, then the first short
// line that does not look like JSON.
func synthName(text string, kind nutrition.EntityKind) string {
	if m := nameFieldPattern.FindStringSubmatch(text); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}
	if m := titleLinePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(markdownNoise.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" || len(line) >= maxNameLineLength || strings.ContainsAny(line, "{}[]:\"") {
			continue
		}
		return line
	}
	return unnamed(kind)
}

func unnamed(kind nutrition.EntityKind) string {
	switch kind {
	case nutrition.KindPlan:
		return "Unnamed plan"
	case nutrition.KindIngredient:
		return "Unnamed ingredient"
	default:
		return "Unnamed meal"
	}
}
