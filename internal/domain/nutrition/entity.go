package nutrition

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EntityKind identifies one of the three entity shapes the assistant can
// create.
type EntityKind string

const (
	KindIngredient EntityKind = "ingredient"
	KindMeal       EntityKind = "meal"
	KindPlan       EntityKind = "plan"
)

// IsValid returns true if the kind is one of the defined constants.
func (k EntityKind) IsValid() bool {
	switch k {
	case KindIngredient, KindMeal, KindPlan:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (k EntityKind) String() string {
	return string(k)
}

// ParseEntityKind converts a case-insensitive name into an EntityKind.
func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("unknown entity kind %q (want ingredient, meal or plan)", s)
	}
	return k, nil
}

// Macros holds the nutrition values shared by every entity shape. Values are
// per the entity's quantity and unit.
type Macros struct {
	Calories float64 `json:"calories" validate:"gte=0"`
	Carbs    float64 `json:"carbs"    validate:"gte=0"`
	Protein  float64 `json:"protein"  validate:"gte=0"`
	Fat      float64 `json:"fat"      validate:"gte=0"`
}

// MacroFields lists the JSON names of the Macros fields in a stable order.
var MacroFields = []string{"calories", "carbs", "protein", "fat"}

// Ingredient is a single food item with its quantity.
type Ingredient struct {
	Name     string  `json:"name"     validate:"notblank"`
	Unit     Unit    `json:"unit"     validate:"vocab=unit"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
	Macros
}

// Meal is a dish made of ingredients.
type Meal struct {
	Name        string       `json:"name"        validate:"notblank"`
	Type        MealType     `json:"type"        validate:"vocab=meal_type"`
	Description string       `json:"description"`
	Cuisine     Cuisine      `json:"cuisine"     validate:"vocab=cuisine"`
	Unit        Unit         `json:"unit"        validate:"vocab=unit"`
	Quantity    float64      `json:"quantity"    validate:"gt=0"`
	Ingredients []Ingredient `json:"ingredients" validate:"dive"`
	Macros
}

// Plan is a nutrition plan made of meals with daily macro targets.
type Plan struct {
	Name          string `json:"name"                    validate:"notblank"`
	Description   string `json:"description,omitempty"`
	Goal          Goal   `json:"goal"                    validate:"vocab=goal"`
	DurationWeeks int    `json:"durationWeeks,omitempty" validate:"gte=0"`
	Meals         []Meal `json:"meals"                   validate:"dive"`
	Macros
}

// Entity is a tagged union over the three entity shapes. Exactly one of the
// pointer fields matching Kind is set.
type Entity struct {
	Kind       EntityKind
	Ingredient *Ingredient
	Meal       *Meal
	Plan       *Plan
}

// IngredientEntity wraps an Ingredient.
func IngredientEntity(i Ingredient) Entity {
	return Entity{Kind: KindIngredient, Ingredient: &i}
}

// MealEntity wraps a Meal.
func MealEntity(m Meal) Entity {
	return Entity{Kind: KindMeal, Meal: &m}
}

// PlanEntity wraps a Plan.
func PlanEntity(p Plan) Entity {
	return Entity{Kind: KindPlan, Plan: &p}
}

// Value returns the wrapped entity, or nil for an empty variant.
func (e Entity) Value() any {
	switch e.Kind {
	case KindIngredient:
		if e.Ingredient != nil {
			return e.Ingredient
		}
	case KindMeal:
		if e.Meal != nil {
			return e.Meal
		}
	case KindPlan:
		if e.Plan != nil {
			return e.Plan
		}
	}
	return nil
}

// Name returns the wrapped entity's name.
func (e Entity) Name() string {
	switch v := e.Value().(type) {
	case *Ingredient:
		return v.Name
	case *Meal:
		return v.Name
	case *Plan:
		return v.Name
	default:
		return ""
	}
}

// IsZero reports whether no entity is wrapped.
func (e Entity) IsZero() bool {
	return e.Value() == nil
}

// MarshalJSON encodes the wrapped entity directly, without the union envelope.
func (e Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Value())
}
