package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jsamuelsen11/mealplan-assistant/internal/app/jsonrepair"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

// Names used when recovery has to invent an element.
const (
	DefaultPlanName       = "Nutrition plan"
	DefaultMealName       = "Default meal"
	DefaultIngredientName = "Mixed ingredients"
)

// Default plan meal values when the plan carries no macro targets.
const (
	defaultPlanMealCalories = 650
	defaultPlanMealCarbs    = 45
	defaultPlanMealProtein  = 30
	defaultPlanMealFat      = 25
)

// RecoveryOutcome extends Outcome with the audit trail of a recovery pass.
type RecoveryOutcome struct {
	Outcome
	HadRecovery     bool
	RecoveryActions []string
}

// ValidateWithRecovery extracts JSON from text, validates it, and when that
// fails repairs the decoded object field by field before validating again.
// Every change is recorded in RecoveryActions. A payload that is already
// valid comes back with HadRecovery false. Ingredients and meals without a
// name cannot be recovered.
func (v *Validator) ValidateWithRecovery(text string, kind nutrition.EntityKind) RecoveryOutcome {
	repaired := jsonrepair.Extract(text, kind)
	if repaired == "" {
		return RecoveryOutcome{Outcome: parseFailure(kind, fmt.Errorf("no JSON found in %d bytes of text", len(text)))}
	}

	out := v.Validate(repaired, kind)
	if out.Success || !kind.IsValid() {
		return RecoveryOutcome{Outcome: out}
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(repaired), &m); err != nil || m == nil {
		if err == nil {
			err = errors.New("expected a JSON object")
		}
		return RecoveryOutcome{Outcome: parseFailure(kind, err)}
	}

	rec := &recoverer{v: v, defaults: v.registry.Defaults()}
	var err *domain.Error
	switch kind {
	case nutrition.KindIngredient:
		err = rec.ingredient(m)
	case nutrition.KindMeal:
		err = rec.meal(m)
	case nutrition.KindPlan:
		rec.plan(m)
	}
	if err != nil {
		return RecoveryOutcome{Outcome: failure(err, out.Errors), RecoveryActions: rec.actions}
	}

	b, merr := json.Marshal(m)
	if merr != nil {
		return RecoveryOutcome{Outcome: parseFailure(kind, merr), RecoveryActions: rec.actions}
	}
	final := v.Validate(string(b), kind)
	if !final.Success {
		final.Message = "recovery failed: " + final.Message
	}
	return RecoveryOutcome{Outcome: final, HadRecovery: true, RecoveryActions: rec.actions}
}

// recoverer rewrites a decoded object in place and records each change.
type recoverer struct {
	v        *Validator
	defaults Defaults
	actions  []string
}

func (r *recoverer) record(format string, args ...any) {
	r.actions = append(r.actions, fmt.Sprintf(format, args...))
}

func (r *recoverer) ingredient(m map[string]any) *domain.Error {
	if err := requireName(m, nutrition.KindIngredient); err != nil {
		return err
	}
	r.enum(m, "unit", nutrition.FieldUnit, string(r.defaults.Unit), false)
	r.quantity(m, r.defaults.IngredientQuantity)
	r.macros(m)
	return nil
}

func (r *recoverer) meal(m map[string]any) *domain.Error {
	if err := requireName(m, nutrition.KindMeal); err != nil {
		return err
	}

	mealType := string(r.defaults.MealType)
	if inferred, ok := nutrition.InferMealType(m["name"].(string)); ok {
		mealType = string(inferred)
	}
	r.enum(m, "type", nutrition.FieldMealType, mealType, true)
	r.text(m, "description")
	r.enum(m, "cuisine", nutrition.FieldCuisine, string(r.defaults.Cuisine), false)
	r.enum(m, "unit", nutrition.FieldUnit, string(r.defaults.Unit), false)
	r.quantity(m, r.defaults.MealQuantity)
	r.macros(m)

	items := r.list(m, "ingredients")
	valid := make([]nutrition.Ingredient, 0, len(items))
	for i, item := range items {
		if ing, ok := r.nested(item, i, nutrition.KindIngredient); ok {
			valid = append(valid, *ing.Ingredient)
		}
	}
	for len(valid) < r.v.registry.MinMealIngredients() {
		valid = append(valid, r.defaultIngredient(macrosOf(m)))
		r.record("no valid ingredient, default ingredient %q added", DefaultIngredientName)
	}
	m["ingredients"] = valid
	return nil
}

func (r *recoverer) plan(m map[string]any) {
	if name, ok := m["name"].(string); !ok || strings.TrimSpace(name) == "" {
		m["name"] = DefaultPlanName
		r.record("name missing or invalid, default used: %q", DefaultPlanName)
	}
	r.text(m, "description")
	r.enum(m, "goal", nutrition.FieldGoal, string(r.defaults.Goal), true)
	r.durationWeeks(m)
	r.macros(m)

	items := r.list(m, "meals")
	valid := make([]nutrition.Meal, 0, len(items))
	for i, item := range items {
		if meal, ok := r.nested(item, i, nutrition.KindMeal); ok {
			valid = append(valid, *meal.Meal)
		}
	}
	for len(valid) < r.v.registry.MinPlanMeals() {
		valid = append(valid, r.defaultMeal(macrosOf(m)))
		r.record("no valid meal, default meal %q added", DefaultMealName)
	}
	m["meals"] = valid
}

// nested recovers one list element through its own validation pass. Elements
// that still fail are dropped with the reason recorded.
func (r *recoverer) nested(item any, index int, kind nutrition.EntityKind) (nutrition.Entity, bool) {
	obj, ok := item.(map[string]any)
	if !ok {
		r.record("%s %d dropped: not an object", kind, index+1)
		return nutrition.Entity{}, false
	}
	b, err := json.Marshal(obj)
	if err != nil {
		r.record("%s %d dropped: %v", kind, index+1, err)
		return nutrition.Entity{}, false
	}
	out := r.v.ValidateWithRecovery(string(b), kind)
	if !out.Success {
		r.record("%s %d dropped: %s", kind, index+1, out.Message)
		return nutrition.Entity{}, false
	}
	if out.HadRecovery {
		r.record("%s %q recovered: %s", kind, out.Entity.Name(), strings.Join(out.RecoveryActions, ", "))
	}
	return out.Entity, true
}

func requireName(m map[string]any, kind nutrition.EntityKind) *domain.Error {
	if name, ok := m["name"].(string); ok && strings.TrimSpace(name) != "" {
		return nil
	}
	return domain.NewError(domain.KindMissingData,
		fmt.Sprintf("the %s has no name", kind)).WithDetails("field", "name")
}

// enum keeps a value already in the vocabulary, otherwise tries the
// normalizer and then def. Absent optional fields are left for the
// validator's defaults.
func (r *recoverer) enum(m map[string]any, key, field, def string, required bool) {
	raw, present := lookup(m, key)
	if !present {
		if required {
			m[key] = def
			r.record("%s missing, default used: %s", key, def)
		}
		return
	}

	s, isString := raw.(string)
	if isString && r.v.registry.Allows(field, s) {
		return
	}
	if isString {
		if canonical, ok := r.v.registry.Normalize(field, s); ok {
			m[key] = canonical
			r.record("%s normalized: %q -> %s", key, s, canonical)
			return
		}
	}
	m[key] = def
	r.record("%s invalid (%v), default used: %s", key, raw, def)
}

func (r *recoverer) text(m map[string]any, key string) {
	raw, present := lookup(m, key)
	if !present {
		return
	}
	if _, ok := raw.(string); !ok {
		m[key] = ""
		r.record("%s invalid, empty text used", key)
	}
}

func (r *recoverer) quantity(m map[string]any, def float64) {
	raw, present := lookup(m, "quantity")
	if !present {
		return
	}
	if f, ok := raw.(float64); ok && f > 0 {
		return
	}
	if f, ok := parseNumber(raw); ok && f > 0 {
		m["quantity"] = f
		r.record("quantity converted from text: %g", f)
		return
	}
	m["quantity"] = def
	r.record("quantity invalid, default used: %g", def)
}

func (r *recoverer) macros(m map[string]any) {
	for _, key := range nutrition.MacroFields {
		raw, present := lookup(m, key)
		if f, ok := raw.(float64); ok && f >= 0 {
			continue
		}
		if f, ok := parseNumber(raw); ok && f >= 0 {
			m[key] = f
			r.record("%s converted from text: %g", key, f)
			continue
		}
		m[key] = 0.0
		if present {
			r.record("%s invalid, default used: 0", key)
		} else {
			r.record("%s missing, default used: 0", key)
		}
	}
}

func (r *recoverer) durationWeeks(m map[string]any) {
	raw, present := lookup(m, "durationWeeks")
	if !present {
		return
	}
	f, ok := raw.(float64)
	if !ok {
		f, ok = parseNumber(raw)
	}
	switch {
	case ok && f >= 0 && f == math.Trunc(f) && f <= math.MaxInt32:
		if _, isNumber := raw.(float64); !isNumber {
			m["durationWeeks"] = f
			r.record("durationWeeks converted from text: %g", f)
		}
	case ok && f >= 0 && f <= math.MaxInt32:
		m["durationWeeks"] = math.Round(f)
		r.record("durationWeeks rounded to %g", math.Round(f))
	default:
		delete(m, "durationWeeks")
		r.record("durationWeeks invalid, removed")
	}
}

// list returns the elements of an array field. A missing or non-array value
// yields an empty list; the non-array case is recorded.
func (r *recoverer) list(m map[string]any, key string) []any {
	raw, present := lookup(m, key)
	if !present {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		r.record("%s invalid, empty list used", key)
		return nil
	}
	return items
}

func (r *recoverer) defaultIngredient(macros nutrition.Macros) nutrition.Ingredient {
	return nutrition.Ingredient{
		Name:     DefaultIngredientName,
		Unit:     r.defaults.Unit,
		Quantity: r.defaults.IngredientQuantity,
		Macros:   macros,
	}
}

// defaultMeal builds the meal injected into an empty plan: a third of the
// plan's calories, and the plan's other macros, or fixed values when the
// plan has none.
func (r *recoverer) defaultMeal(plan nutrition.Macros) nutrition.Meal {
	macros := nutrition.Macros{
		Calories: defaultPlanMealCalories,
		Carbs:    orDefault(plan.Carbs, defaultPlanMealCarbs),
		Protein:  orDefault(plan.Protein, defaultPlanMealProtein),
		Fat:      orDefault(plan.Fat, defaultPlanMealFat),
	}
	if plan.Calories > 0 {
		macros.Calories = math.Round(plan.Calories / 3)
	}

	meal := nutrition.Meal{
		Name:     DefaultMealName,
		Type:     r.defaults.MealType,
		Cuisine:  r.defaults.Cuisine,
		Unit:     r.defaults.Unit,
		Quantity: r.defaults.MealQuantity,
		Macros:   macros,
	}
	for len(meal.Ingredients) < r.v.registry.MinMealIngredients() {
		meal.Ingredients = append(meal.Ingredients, r.defaultIngredient(macros))
	}
	return meal
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

// macrosOf reads macros from an object that has already been through
// recoverer.macros.
func macrosOf(m map[string]any) nutrition.Macros {
	get := func(key string) float64 {
		f, _ := m[key].(float64)
		return f
	}
	return nutrition.Macros{
		Calories: get("calories"),
		Carbs:    get("carbs"),
		Protein:  get("protein"),
		Fat:      get("fat"),
	}
}

func parseNumber(v any) (float64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
