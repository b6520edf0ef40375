// Package fallback synthesizes minimal, schema-valid entities and apology
// text for when model output cannot be repaired or recovered.
package fallback

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/jsamuelsen11/mealplan-assistant/internal/app/schema"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

// Context carries the hints used to make a fallback plausible. Every field is
// optional; hints outside the registry vocabulary are ignored.
type Context struct {
	Query          string
	MealType       nutrition.MealType
	Cuisine        nutrition.Cuisine
	Goal           nutrition.Goal
	IngredientName string
	// Calories is a target for meals and plans. Zero means unspecified.
	Calories float64
}

const (
	DefaultIngredientName = "Default ingredient"
	defaultMealCalories   = 500
	minCalories           = 50
	maxCalories           = 10000
)

// baseIngredients make up a 500 kcal fallback meal and are scaled to other
// calorie targets.
var baseIngredients = []nutrition.Ingredient{
	{Name: "Lean protein", Quantity: 150, Macros: nutrition.Macros{Calories: 250, Carbs: 0, Protein: 25, Fat: 15}},
	{Name: "Whole grains", Quantity: 200, Macros: nutrition.Macros{Calories: 200, Carbs: 40, Protein: 5, Fat: 2}},
	{Name: "Mixed vegetables", Quantity: 150, Macros: nutrition.Macros{Calories: 50, Carbs: 10, Protein: 2, Fat: 1}},
}

var mealNames = map[nutrition.MealType]struct{ name, description string }{
	nutrition.MealBreakfast: {"Balanced breakfast", "A complete breakfast with a good balance of macronutrients."},
	nutrition.MealLunch:     {"Balanced lunch", "A complete lunch with a good balance of macronutrients."},
	nutrition.MealDinner:    {"Balanced dinner", "A light but nourishing dinner."},
	nutrition.MealSnack:     {"Balanced snack", "A nourishing snack between meals."},
}

// goalTargets are daily calories and the percentage of energy from carbs,
// protein and fat.
var goalTargets = map[nutrition.Goal]struct {
	name     string
	calories float64
	carbs    float64
	protein  float64
	fat      float64
}{
	nutrition.GoalGainMuscle: {"Muscle gain plan", 2500, 40, 40, 20},
	nutrition.GoalWeightLoss: {"Weight loss plan", 1800, 40, 35, 25},
	nutrition.GoalMaintain:   {"Balanced nutrition plan", 2000, 50, 25, 25},
}

// planSplit is the share of daily calories per plan meal.
var planSplit = []struct {
	mealType nutrition.MealType
	share    float64
}{
	{nutrition.MealBreakfast, 0.25},
	{nutrition.MealLunch, 0.40},
	{nutrition.MealDinner, 0.35},
}

// Generator builds fallbacks against a schema registry. It is stateless and
// safe for concurrent use.
type Generator struct {
	validator *schema.Validator
	registry  *schema.Registry
	logger    *slog.Logger
}

// NewGenerator creates a Generator whose output is checked with v.
func NewGenerator(v *schema.Validator, logger *slog.Logger) *Generator {
	return &Generator{validator: v, registry: v.Registry(), logger: logger}
}

// Ingredient returns a 100 g style ingredient named after the hint.
func (g *Generator) Ingredient(fc Context) nutrition.Ingredient {
	defs := g.registry.Defaults()
	name := strings.TrimSpace(fc.IngredientName)
	if name == "" {
		name = DefaultIngredientName
	}
	return nutrition.Ingredient{
		Name:     name,
		Unit:     defs.Unit,
		Quantity: defs.IngredientQuantity,
		Macros:   nutrition.Macros{Calories: 100, Carbs: 10, Protein: 5, Fat: 5},
	}
}

// Meal returns a meal of placeholder ingredients whose macros sum to the
// meal's. The calorie hint scales the ingredients.
func (g *Generator) Meal(fc Context) nutrition.Meal {
	defs := g.registry.Defaults()
	mealType := g.mealType(fc.MealType)
	cuisine := defs.Cuisine
	if g.registry.Allows(nutrition.FieldCuisine, string(fc.Cuisine)) {
		cuisine = fc.Cuisine
	}
	return g.meal(mealType, cuisine, calorieTarget(fc.Calories, defaultMealCalories))
}

func (g *Generator) meal(mealType nutrition.MealType, cuisine nutrition.Cuisine, calories float64) nutrition.Meal {
	defs := g.registry.Defaults()
	scale := calories / defaultMealCalories

	names, ok := mealNames[mealType]
	if !ok {
		names.name = "Balanced meal"
		names.description = "A meal with a good balance of macronutrients."
	}

	meal := nutrition.Meal{
		Name:        names.name,
		Type:        mealType,
		Description: names.description,
		Cuisine:     cuisine,
		Unit:        defs.Unit,
		Quantity:    defs.MealQuantity,
	}
	for len(meal.Ingredients) < max(len(baseIngredients), g.registry.MinMealIngredients()) {
		base := baseIngredients[len(meal.Ingredients)%len(baseIngredients)]
		ing := nutrition.Ingredient{
			Name:     base.Name,
			Unit:     defs.Unit,
			Quantity: round1(base.Quantity * scale),
			Macros:   scaleMacros(base.Macros, scale),
		}
		meal.Ingredients = append(meal.Ingredients, ing)
		meal.Macros = addMacros(meal.Macros, ing.Macros)
	}
	return meal
}

// Plan returns a plan for the hinted goal with breakfast, lunch and dinner
// taking 25, 40 and 35 percent of the daily calories.
func (g *Generator) Plan(fc Context) nutrition.Plan {
	defs := g.registry.Defaults()
	goal := defs.Goal
	if g.registry.Allows(nutrition.FieldGoal, string(fc.Goal)) {
		goal = fc.Goal
	}
	target, ok := goalTargets[goal]
	if !ok {
		target = goalTargets[nutrition.GoalMaintain]
	}
	target.calories = calorieTarget(fc.Calories, target.calories)

	plan := nutrition.Plan{
		Name:        target.name,
		Description: "Generated automatically because no valid plan could be produced.",
		Goal:        goal,
		Macros: nutrition.Macros{
			Calories: target.calories,
			Carbs:    math.Round(target.calories * target.carbs / 100 / 4),
			Protein:  math.Round(target.calories * target.protein / 100 / 4),
			Fat:      math.Round(target.calories * target.fat / 100 / 9),
		},
	}
	for i := 0; i < max(len(planSplit), g.registry.MinPlanMeals()); i++ {
		split := planSplit[i%len(planSplit)]
		plan.Meals = append(plan.Meals,
			g.meal(g.mealType(split.mealType), defs.Cuisine, math.Round(target.calories*split.share)))
	}
	return plan
}

// Entity returns the fallback for kind and checks it against the schema. An
// error means the registry cannot accept any fallback, which is a
// configuration fault.
func (g *Generator) Entity(kind nutrition.EntityKind, fc Context) (nutrition.Entity, error) {
	var entity nutrition.Entity
	switch kind {
	case nutrition.KindIngredient:
		entity = nutrition.IngredientEntity(g.Ingredient(fc))
	case nutrition.KindMeal:
		entity = nutrition.MealEntity(g.Meal(fc))
	case nutrition.KindPlan:
		entity = nutrition.PlanEntity(g.Plan(fc))
	default:
		return nutrition.Entity{}, domain.NewError(domain.KindUnsupportedOperation,
			fmt.Sprintf("no fallback for entity kind %q", kind))
	}

	payload, err := json.Marshal(entity)
	if err != nil {
		return nutrition.Entity{}, domain.Classify(err, "fallback could not be encoded", domain.KindBusinessLogic, nil, false)
	}
	if out := g.validator.Validate(string(payload), kind); !out.Success {
		return nutrition.Entity{}, domain.NewError(domain.KindBusinessLogic, "fallback rejected by schema: "+out.Message)
	}

	g.logger.Info("fallback generated",
		slog.String("entity_kind", kind.String()),
		slog.String("name", entity.Name()),
	)
	return entity, nil
}

func (g *Generator) mealType(hint nutrition.MealType) nutrition.MealType {
	if g.registry.Allows(nutrition.FieldMealType, string(hint)) {
		return hint
	}
	return g.registry.Defaults().MealType
}

// calorieTarget accepts a finite hint within sane bounds, else def.
func calorieTarget(hint, def float64) float64 {
	if math.IsNaN(hint) || hint < minCalories || hint > maxCalories {
		return def
	}
	return hint
}

func scaleMacros(m nutrition.Macros, f float64) nutrition.Macros {
	return nutrition.Macros{
		Calories: round1(m.Calories * f),
		Carbs:    round1(m.Carbs * f),
		Protein:  round1(m.Protein * f),
		Fat:      round1(m.Fat * f),
	}
}

func addMacros(a, b nutrition.Macros) nutrition.Macros {
	return nutrition.Macros{
		Calories: round1(a.Calories + b.Calories),
		Carbs:    round1(a.Carbs + b.Carbs),
		Protein:  round1(a.Protein + b.Protein),
		Fat:      round1(a.Fat + b.Fat),
	}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
