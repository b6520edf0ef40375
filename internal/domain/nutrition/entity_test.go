package nutrition

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseEntityKind(t *testing.T) {
	t.Parallel()

	if got, err := ParseEntityKind(" Meal "); err != nil || got != KindMeal {
		t.Errorf("ParseEntityKind(\" Meal \") = %q, %v", got, err)
	}
	if _, err := ParseEntityKind("recipe"); err == nil {
		t.Error("ParseEntityKind(\"recipe\") expected error")
	}
}

func TestActionKind_EntityKindRoundTrip(t *testing.T) {
	t.Parallel()

	for _, kind := range []EntityKind{KindIngredient, KindMeal, KindPlan} {
		got, ok := ActionFor(kind).EntityKind()
		if !ok || got != kind {
			t.Errorf("ActionFor(%s).EntityKind() = %q, %v", kind, got, ok)
		}
	}
	if _, ok := ActionNone.EntityKind(); ok {
		t.Error("ActionNone.EntityKind() reported an entity")
	}
	if got := ActionFor("recipe"); got != ActionNone {
		t.Errorf("ActionFor(recipe) = %s, want NONE", got)
	}
}

func TestEntity(t *testing.T) {
	t.Parallel()

	t.Run("zero values", func(t *testing.T) {
		t.Parallel()
		if !(Entity{}).IsZero() {
			t.Error("empty Entity is not zero")
		}
		if !(Entity{Kind: KindMeal}).IsZero() {
			t.Error("Entity with kind but no value is not zero")
		}
		if (Entity{Kind: KindPlan, Meal: &Meal{Name: "x"}}).Name() != "" {
			t.Error("mismatched variant should not report a name")
		}
	})

	t.Run("name and value", func(t *testing.T) {
		t.Parallel()
		e := MealEntity(Meal{Name: "Grilled Chicken"})
		if e.Name() != "Grilled Chicken" {
			t.Errorf("Name() = %q", e.Name())
		}
		if _, ok := e.Value().(*Meal); !ok {
			t.Errorf("Value() = %T, want *Meal", e.Value())
		}
	})

	t.Run("marshals without envelope", func(t *testing.T) {
		t.Parallel()
		e := IngredientEntity(Ingredient{Name: "Oats", Unit: UnitGrams, Quantity: 40, Macros: Macros{Calories: 150}})

		b, err := json.Marshal(e)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		got := string(b)
		for _, want := range []string{`"name":"Oats"`, `"unit":"GRAMMES"`, `"calories":150`} {
			if !strings.Contains(got, want) {
				t.Errorf("json %s is missing %s", got, want)
			}
		}
		if strings.Contains(got, "Kind") {
			t.Errorf("json %s leaks the union envelope", got)
		}
	})
}
