package schema

import (
	"encoding/json"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

func mustJSON(t *testing.T, v any) string {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func validIngredientMap() map[string]any {
	return map[string]any{
		"name":     "Chicken breast",
		"unit":     "GRAMMES",
		"quantity": 150.0,
		"calories": 165.0,
		"carbs":    0.0,
		"protein":  31.0,
		"fat":      3.6,
	}
}

func validMealMap() map[string]any {
	return map[string]any{
		"name":        "Grilled Chicken",
		"type":        "LUNCH",
		"description": "Simple and lean",
		"cuisine":     "AMERICAN",
		"unit":        "PORTION",
		"quantity":    1.0,
		"calories":    420.0,
		"carbs":       30.0,
		"protein":     45.0,
		"fat":         12.0,
		"ingredients": []any{validIngredientMap()},
	}
}

func validPlanMap() map[string]any {
	return map[string]any{
		"name":          "Lean summer",
		"goal":          "WEIGHT_LOSS",
		"durationWeeks": 8.0,
		"calories":      1800.0,
		"carbs":         180.0,
		"protein":       140.0,
		"fat":           60.0,
		"meals":         []any{validMealMap()},
	}
}

func pick[T ~string](f *gofakeit.Faker, values []string) T {
	return T(values[f.IntRange(0, len(values)-1)])
}

func fakeIngredient(f *gofakeit.Faker) nutrition.Ingredient {
	vocab := nutrition.DefaultVocabulary()
	return nutrition.Ingredient{
		Name:     f.Noun() + " " + f.Adjective(),
		Unit:     pick[nutrition.Unit](f, vocab[nutrition.FieldUnit]),
		Quantity: f.Float64Range(1, 500),
		Macros:   fakeMacros(f),
	}
}

func fakeMeal(f *gofakeit.Faker) nutrition.Meal {
	vocab := nutrition.DefaultVocabulary()
	meal := nutrition.Meal{
		Name:        f.AppName(),
		Type:        pick[nutrition.MealType](f, vocab[nutrition.FieldMealType]),
		Description: f.Sentence(6),
		Cuisine:     pick[nutrition.Cuisine](f, vocab[nutrition.FieldCuisine]),
		Unit:        pick[nutrition.Unit](f, vocab[nutrition.FieldUnit]),
		Quantity:    f.Float64Range(0.5, 4),
		Macros:      fakeMacros(f),
	}
	for range f.IntRange(1, 4) {
		meal.Ingredients = append(meal.Ingredients, fakeIngredient(f))
	}
	return meal
}

func fakePlan(f *gofakeit.Faker) nutrition.Plan {
	vocab := nutrition.DefaultVocabulary()
	plan := nutrition.Plan{
		Name:          f.AppName(),
		Goal:          pick[nutrition.Goal](f, vocab[nutrition.FieldGoal]),
		DurationWeeks: f.IntRange(0, 52),
		Macros:        fakeMacros(f),
	}
	if f.Bool() {
		plan.Description = f.Sentence(8)
	}
	for range f.IntRange(1, 5) {
		plan.Meals = append(plan.Meals, fakeMeal(f))
	}
	return plan
}

func fakeMacros(f *gofakeit.Faker) nutrition.Macros {
	return nutrition.Macros{
		Calories: f.Float64Range(0, 1200),
		Carbs:    f.Float64Range(0, 150),
		Protein:  f.Float64Range(0, 100),
		Fat:      f.Float64Range(0, 80),
	}
}
