// Package schema validates decoded model output against the ingredient, meal
// and plan shapes and recovers invalid payloads field by field. The closed
// vocabularies and structural minimums come from a Registry built from
// configuration.
package schema

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/config"
)

// Defaults are the values substituted for absent optional fields, and by
// recovery for fields it cannot normalize.
type Defaults struct {
	Unit               nutrition.Unit
	Cuisine            nutrition.Cuisine
	MealType           nutrition.MealType
	Goal               nutrition.Goal
	IngredientQuantity float64
	MealQuantity       float64
}

// Registry holds the closed vocabulary per enumerated field plus the minimum
// nested element counts. It is immutable after construction.
type Registry struct {
	vocab              map[string][]string
	sets               map[string]map[string]struct{}
	minMealIngredients int
	minPlanMeals       int
	defaults           Defaults
}

// NewRegistry builds a Registry from the schema configuration. It fails when a
// vocabulary is empty or does not contain its default value.
func NewRegistry(cfg *config.SchemaConfig) (*Registry, error) {
	vocab := map[string][]string{
		nutrition.FieldUnit:     cfg.Units,
		nutrition.FieldMealType: cfg.MealTypes,
		nutrition.FieldCuisine:  cfg.Cuisines,
		nutrition.FieldGoal:     cfg.Goals,
	}
	defaults := Defaults{
		Unit:               nutrition.Unit(cfg.Defaults.Unit),
		Cuisine:            nutrition.Cuisine(cfg.Defaults.Cuisine),
		MealType:           nutrition.MealType(cfg.Defaults.MealType),
		Goal:               nutrition.Goal(cfg.Defaults.Goal),
		IngredientQuantity: cfg.Defaults.IngredientQuantity,
		MealQuantity:       cfg.Defaults.MealQuantity,
	}

	r := &Registry{
		vocab:              make(map[string][]string, len(vocab)),
		sets:               make(map[string]map[string]struct{}, len(vocab)),
		minMealIngredients: max(cfg.MinMealIngredients, 1),
		minPlanMeals:       max(cfg.MinPlanMeals, 1),
		defaults:           defaults,
	}

	var errs []error
	for field, values := range vocab {
		if len(values) == 0 {
			errs = append(errs, fmt.Errorf("vocabulary %q is empty", field))
			continue
		}
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}
		r.vocab[field] = slices.Clone(values)
		r.sets[field] = set
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for field, def := range map[string]string{
		nutrition.FieldUnit:     string(defaults.Unit),
		nutrition.FieldMealType: string(defaults.MealType),
		nutrition.FieldCuisine:  string(defaults.Cuisine),
		nutrition.FieldGoal:     string(defaults.Goal),
	} {
		if !r.Allows(field, def) {
			errs = append(errs, fmt.Errorf("default %q is not in vocabulary %q", def, field))
		}
	}
	if defaults.IngredientQuantity <= 0 || defaults.MealQuantity <= 0 {
		errs = append(errs, errors.New("default quantities must be positive"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return r, nil
}

// DefaultRegistry returns a Registry over the built-in vocabularies. It panics
// only if the built-in tables are inconsistent.
func DefaultRegistry() *Registry {
	vocab := nutrition.DefaultVocabulary()
	r, err := NewRegistry(&config.SchemaConfig{
		Units:              vocab[nutrition.FieldUnit],
		MealTypes:          vocab[nutrition.FieldMealType],
		Cuisines:           vocab[nutrition.FieldCuisine],
		Goals:              vocab[nutrition.FieldGoal],
		MinMealIngredients: 1,
		MinPlanMeals:       1,
		Defaults: config.SchemaDefaults{
			Unit:               string(nutrition.UnitGrams),
			Cuisine:            string(nutrition.CuisineGeneral),
			MealType:           string(nutrition.MealBreakfast),
			Goal:               string(nutrition.GoalMaintain),
			IngredientQuantity: 100,
			MealQuantity:       1,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("schema: built-in registry: %v", err))
	}
	return r
}

// Allows reports whether value is in the vocabulary for field. Matching is
// exact.
func (r *Registry) Allows(field, value string) bool {
	_, ok := r.sets[field][value]
	return ok
}

// Values returns the vocabulary for field in configured order.
func (r *Registry) Values(field string) []string {
	return slices.Clone(r.vocab[field])
}

// Normalize maps a loose spelling onto the vocabulary for field. The boolean
// is false when no canonical value matches.
func (r *Registry) Normalize(field, raw string) (string, bool) {
	if r.Allows(field, raw) {
		return raw, true
	}
	candidate := nutrition.Normalize(field, raw)
	if r.Allows(field, candidate) {
		return candidate, true
	}
	return "", false
}

// Defaults returns the configured default values.
func (r *Registry) Defaults() Defaults {
	return r.defaults
}

// MinMealIngredients is the smallest valid ingredient list for a meal.
func (r *Registry) MinMealIngredients() int {
	return r.minMealIngredients
}

// MinPlanMeals is the smallest valid meal list for a plan.
func (r *Registry) MinPlanMeals() int {
	return r.minPlanMeals
}
