package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

func TestValidateWithRecovery_ValidInputIsNoop(t *testing.T) {
	t.Parallel()

	v := NewValidator(DefaultRegistry())
	out := v.ValidateWithRecovery(mustJSON(t, validPlanMap()), nutrition.KindPlan)

	require.True(t, out.Success, out.Message)
	assert.False(t, out.HadRecovery)
	assert.Empty(t, out.RecoveryActions)
}

func TestValidateWithRecovery_Idempotent(t *testing.T) {
	t.Parallel()

	f := gofakeit.New(2024)
	v := NewValidator(DefaultRegistry())

	for range 50 {
		meal := fakeMeal(f)
		out := v.ValidateWithRecovery(mustJSON(t, meal), nutrition.KindMeal)
		require.True(t, out.Success, out.Message)
		assert.False(t, out.HadRecovery)
		assert.Equal(t, meal, *out.Entity.Meal)

		plan := fakePlan(f)
		out = v.ValidateWithRecovery(mustJSON(t, plan), nutrition.KindPlan)
		require.True(t, out.Success, out.Message)
		assert.False(t, out.HadRecovery)
		assert.Equal(t, plan, *out.Entity.Plan)

		ing := fakeIngredient(f)
		out = v.ValidateWithRecovery(mustJSON(t, ing), nutrition.KindIngredient)
		require.True(t, out.Success, out.Message)
		assert.False(t, out.HadRecovery)
		assert.Equal(t, ing, *out.Entity.Ingredient)
	}
}

func TestValidateWithRecovery_MissingMacros(t *testing.T) {
	t.Parallel()

	meal := validMealMap()
	for _, k := range nutrition.MacroFields {
		delete(meal, k)
	}

	out := NewValidator(DefaultRegistry()).ValidateWithRecovery(mustJSON(t, meal), nutrition.KindMeal)

	require.True(t, out.Success, out.Message)
	assert.True(t, out.HadRecovery)
	assert.Equal(t, nutrition.Macros{}, out.Entity.Meal.Macros)
	assert.Equal(t, []string{
		"calories missing, default used: 0",
		"carbs missing, default used: 0",
		"protein missing, default used: 0",
		"fat missing, default used: 0",
	}, out.RecoveryActions)
}

func TestValidateWithRecovery_NamelessItemsFail(t *testing.T) {
	t.Parallel()

	v := NewValidator(DefaultRegistry())
	for _, kind := range []nutrition.EntityKind{nutrition.KindIngredient, nutrition.KindMeal} {
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			var payload map[string]any
			if kind == nutrition.KindMeal {
				payload = validMealMap()
			} else {
				payload = validIngredientMap()
			}
			payload["name"] = " "

			out := v.ValidateWithRecovery(mustJSON(t, payload), kind)

			assert.False(t, out.Success)
			assert.False(t, out.HadRecovery)
			require.NotNil(t, out.Err)
			assert.Equal(t, domain.KindMissingData, out.Err.Kind)
		})
	}
}

func TestValidateWithRecovery_FieldRecovery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		kind       nutrition.EntityKind
		payload    func() map[string]any
		check      func(t *testing.T, e nutrition.Entity)
		wantAction string
	}{
		{
			name: "unit synonym",
			kind: nutrition.KindIngredient,
			payload: func() map[string]any {
				m := validIngredientMap()
				m["unit"] = "g"
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.Equal(t, nutrition.UnitGrams, e.Ingredient.Unit)
			},
			wantAction: `unit normalized: "g" -> GRAMMES`,
		},
		{
			name: "unknown unit falls back to default",
			kind: nutrition.KindIngredient,
			payload: func() map[string]any {
				m := validIngredientMap()
				m["unit"] = "handful"
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.Equal(t, nutrition.UnitGrams, e.Ingredient.Unit)
			},
			wantAction: "unit invalid (handful), default used: GRAMMES",
		},
		{
			name: "invalid ingredient quantity",
			kind: nutrition.KindIngredient,
			payload: func() map[string]any {
				m := validIngredientMap()
				m["quantity"] = -3.0
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.InDelta(t, 100.0, e.Ingredient.Quantity, 0.001)
			},
			wantAction: "quantity invalid, default used: 100",
		},
		{
			name: "invalid meal quantity",
			kind: nutrition.KindMeal,
			payload: func() map[string]any {
				m := validMealMap()
				m["quantity"] = "a bowl"
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.InDelta(t, 1.0, e.Meal.Quantity, 0.001)
			},
			wantAction: "quantity invalid, default used: 1",
		},
		{
			name: "macro as text",
			kind: nutrition.KindIngredient,
			payload: func() map[string]any {
				m := validIngredientMap()
				m["protein"] = " 31.5 "
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.InDelta(t, 31.5, e.Ingredient.Protein, 0.001)
			},
			wantAction: "protein converted from text: 31.5",
		},
		{
			name: "negative macro",
			kind: nutrition.KindIngredient,
			payload: func() map[string]any {
				m := validIngredientMap()
				m["fat"] = -1.0
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.Zero(t, e.Ingredient.Fat)
			},
			wantAction: "fat invalid, default used: 0",
		},
		{
			name: "localized cuisine",
			kind: nutrition.KindMeal,
			payload: func() map[string]any {
				m := validMealMap()
				m["cuisine"] = "Italienne"
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.Equal(t, nutrition.CuisineItalian, e.Meal.Cuisine)
			},
			wantAction: `cuisine normalized: "Italienne" -> ITALIAN`,
		},
		{
			name: "meal type synonym",
			kind: nutrition.KindMeal,
			payload: func() map[string]any {
				m := validMealMap()
				m["type"] = "supper"
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.Equal(t, nutrition.MealDinner, e.Meal.Type)
			},
			wantAction: `type normalized: "supper" -> DINNER`,
		},
		{
			name: "meal type inferred from name",
			kind: nutrition.KindMeal,
			payload: func() map[string]any {
				m := validMealMap()
				m["name"] = "Quick snack plate"
				delete(m, "type")
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.Equal(t, nutrition.MealSnack, e.Meal.Type)
			},
			wantAction: "type missing, default used: SNACK",
		},
		{
			name: "meal type default",
			kind: nutrition.KindMeal,
			payload: func() map[string]any {
				m := validMealMap()
				m["type"] = 7.0
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.Equal(t, nutrition.MealBreakfast, e.Meal.Type)
			},
			wantAction: "type invalid (7), default used: BREAKFAST",
		},
		{
			name: "description of wrong type",
			kind: nutrition.KindMeal,
			payload: func() map[string]any {
				m := validMealMap()
				m["description"] = []any{"a", "b"}
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.Empty(t, e.Meal.Description)
			},
			wantAction: "description invalid, empty text used",
		},
		{
			name: "plan gets a generic name",
			kind: nutrition.KindPlan,
			payload: func() map[string]any {
				m := validPlanMap()
				delete(m, "name")
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.Equal(t, DefaultPlanName, e.Plan.Name)
			},
			wantAction: `name missing or invalid, default used: "Nutrition plan"`,
		},
		{
			name: "goal synonym",
			kind: nutrition.KindPlan,
			payload: func() map[string]any {
				m := validPlanMap()
				m["goal"] = "LOSE_WEIGHT"
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.Equal(t, nutrition.GoalWeightLoss, e.Plan.Goal)
			},
			wantAction: `goal normalized: "LOSE_WEIGHT" -> WEIGHT_LOSS`,
		},
		{
			name: "missing goal",
			kind: nutrition.KindPlan,
			payload: func() map[string]any {
				m := validPlanMap()
				delete(m, "goal")
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.Equal(t, nutrition.GoalMaintain, e.Plan.Goal)
			},
			wantAction: "goal missing, default used: MAINTAIN",
		},
		{
			name: "fractional duration",
			kind: nutrition.KindPlan,
			payload: func() map[string]any {
				m := validPlanMap()
				m["durationWeeks"] = 3.6
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.Equal(t, 4, e.Plan.DurationWeeks)
			},
			wantAction: "durationWeeks rounded to 4",
		},
		{
			name: "negative duration",
			kind: nutrition.KindPlan,
			payload: func() map[string]any {
				m := validPlanMap()
				m["durationWeeks"] = -2.0
				return m
			},
			check: func(t *testing.T, e nutrition.Entity) {
				assert.Zero(t, e.Plan.DurationWeeks)
			},
			wantAction: "durationWeeks invalid, removed",
		},
	}

	v := NewValidator(DefaultRegistry())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := v.ValidateWithRecovery(mustJSON(t, tt.payload()), tt.kind)

			require.True(t, out.Success, out.Message)
			assert.True(t, out.HadRecovery)
			assert.Contains(t, out.RecoveryActions, tt.wantAction)
			tt.check(t, out.Entity)
		})
	}
}

func TestValidateWithRecovery_DropsUnrecoverableIngredients(t *testing.T) {
	t.Parallel()

	meal := validMealMap()
	nameless := validIngredientMap()
	delete(nameless, "name")
	fixable := validIngredientMap()
	fixable["name"] = "Rice"
	fixable["unit"] = "grams"
	meal["ingredients"] = []any{validIngredientMap(), nameless, "salt", fixable}

	out := NewValidator(DefaultRegistry()).ValidateWithRecovery(mustJSON(t, meal), nutrition.KindMeal)

	require.True(t, out.Success, out.Message)
	require.Len(t, out.Entity.Meal.Ingredients, 2)
	assert.Equal(t, "Chicken breast", out.Entity.Meal.Ingredients[0].Name)
	assert.Equal(t, "Rice", out.Entity.Meal.Ingredients[1].Name)
	assert.Equal(t, nutrition.UnitGrams, out.Entity.Meal.Ingredients[1].Unit)

	joined := strings.Join(out.RecoveryActions, "\n")
	assert.Contains(t, joined, "ingredient 2 dropped")
	assert.Contains(t, joined, "ingredient 3 dropped: not an object")
	assert.Contains(t, joined, `ingredient "Rice" recovered`)
}

func TestValidateWithRecovery_InjectsDefaultIngredient(t *testing.T) {
	t.Parallel()

	meal := validMealMap()
	meal["ingredients"] = []any{}

	out := NewValidator(DefaultRegistry()).ValidateWithRecovery(mustJSON(t, meal), nutrition.KindMeal)

	require.True(t, out.Success, out.Message)
	require.Len(t, out.Entity.Meal.Ingredients, 1)
	ing := out.Entity.Meal.Ingredients[0]
	assert.Equal(t, DefaultIngredientName, ing.Name)
	assert.Equal(t, out.Entity.Meal.Macros, ing.Macros)
	assert.Contains(t, out.RecoveryActions, `no valid ingredient, default ingredient "Mixed ingredients" added`)
}

func TestValidateWithRecovery_DefaultPlanMeal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		plan         func() map[string]any
		wantCalories float64
		wantCarbs    float64
		wantProtein  float64
	}{
		{
			name: "derived from plan targets",
			plan: func() map[string]any {
				m := validPlanMap()
				m["calories"] = 2000.0
				m["meals"] = []any{}
				return m
			},
			wantCalories: 667,
			wantCarbs:    180,
			wantProtein:  140,
		},
		{
			name: "fixed values without targets",
			plan: func() map[string]any {
				m := validPlanMap()
				for _, k := range nutrition.MacroFields {
					delete(m, k)
				}
				delete(m, "meals")
				return m
			},
			wantCalories: 650,
			wantCarbs:    45,
			wantProtein:  30,
		},
	}

	v := NewValidator(DefaultRegistry())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := v.ValidateWithRecovery(mustJSON(t, tt.plan()), nutrition.KindPlan)

			require.True(t, out.Success, out.Message)
			require.Len(t, out.Entity.Plan.Meals, 1)
			meal := out.Entity.Plan.Meals[0]
			assert.Equal(t, DefaultMealName, meal.Name)
			assert.InDelta(t, tt.wantCalories, meal.Calories, 0.001)
			assert.InDelta(t, tt.wantCarbs, meal.Carbs, 0.001)
			assert.InDelta(t, tt.wantProtein, meal.Protein, 0.001)
			assert.NotEmpty(t, meal.Ingredients)
		})
	}
}

func TestValidateWithRecovery_NestedListsNeverEmpty(t *testing.T) {
	t.Parallel()

	f := gofakeit.New(99)
	v := NewValidator(DefaultRegistry())

	junk := func() []any {
		var items []any
		for range f.IntRange(0, 4) {
			switch f.IntRange(0, 3) {
			case 0:
				items = append(items, f.Word())
			case 1:
				items = append(items, f.Number(-10, 10))
			case 2:
				items = append(items, map[string]any{"calories": f.Float64Range(0, 100)})
			default:
				items = append(items, nil)
			}
		}
		return items
	}

	for range 100 {
		meal := validMealMap()
		meal["ingredients"] = junk()
		out := v.ValidateWithRecovery(mustJSON(t, meal), nutrition.KindMeal)
		require.True(t, out.Success, out.Message)
		assert.NotEmpty(t, out.Entity.Meal.Ingredients)

		plan := validPlanMap()
		plan["meals"] = junk()
		out = v.ValidateWithRecovery(mustJSON(t, plan), nutrition.KindPlan)
		require.True(t, out.Success, out.Message)
		require.NotEmpty(t, out.Entity.Plan.Meals)
		for _, m := range out.Entity.Plan.Meals {
			assert.NotEmpty(t, m.Ingredients)
		}
	}
}

func TestValidateWithRecovery_FromProse(t *testing.T) {
	t.Parallel()

	text := "Title: Power Bowl\nA hearty lunch with quinoa and beans."

	out := NewValidator(DefaultRegistry()).ValidateWithRecovery(text, nutrition.KindMeal)

	require.True(t, out.Success, out.Message)
	assert.True(t, out.HadRecovery)
	assert.Equal(t, "Power Bowl", out.Entity.Meal.Name)
	assert.NotEmpty(t, out.Entity.Meal.Ingredients)

	b, err := json.Marshal(out.Entity)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"name":"Power Bowl"`)
}

func TestValidateWithRecovery_Unparseable(t *testing.T) {
	t.Parallel()

	v := NewValidator(DefaultRegistry())

	out := v.ValidateWithRecovery("   ", nutrition.KindMeal)
	assert.False(t, out.Success)
	require.NotNil(t, out.Err)
	assert.Equal(t, domain.KindParsing, out.Err.Kind)

	out = v.ValidateWithRecovery(`[1, 2, 3]`, nutrition.KindMeal)
	assert.False(t, out.Success)
	assert.False(t, out.HadRecovery)
}
