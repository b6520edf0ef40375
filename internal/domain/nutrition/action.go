// Package nutrition defines the entities the assistant can create (ingredient,
// meal, plan), their closed vocabularies, and the action kinds that carry them
// inside model output.
package nutrition

// ActionKind names a structured create intent embedded in model text.
type ActionKind string

const (
	ActionNone          ActionKind = "NONE"
	ActionAddMeal       ActionKind = "ADD_MEAL"
	ActionAddPlan       ActionKind = "ADD_PLAN"
	ActionAddIngredient ActionKind = "ADD_INGREDIENT"

	// ActionUnknown is reported when no model output could be obtained at all.
	ActionUnknown ActionKind = "UNKNOWN"
)

// String implements fmt.Stringer.
func (a ActionKind) String() string {
	return string(a)
}

// EntityKind returns the entity created by the action. The boolean is false
// for ActionNone and ActionUnknown.
func (a ActionKind) EntityKind() (EntityKind, bool) {
	switch a {
	case ActionAddMeal:
		return KindMeal, true
	case ActionAddPlan:
		return KindPlan, true
	case ActionAddIngredient:
		return KindIngredient, true
	default:
		return "", false
	}
}

// ActionFor returns the create action for an entity kind.
func ActionFor(k EntityKind) ActionKind {
	switch k {
	case KindMeal:
		return ActionAddMeal
	case KindPlan:
		return ActionAddPlan
	case KindIngredient:
		return ActionAddIngredient
	default:
		return ActionNone
	}
}
