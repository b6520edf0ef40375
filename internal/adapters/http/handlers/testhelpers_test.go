package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

var testTime = time.Date(2026, 2, 12, 15, 4, 5, 0, time.UTC)

func validMeal() nutrition.Meal {
	return nutrition.Meal{
		Name:     "Chicken rice bowl",
		Type:     nutrition.MealLunch,
		Cuisine:  nutrition.CuisineAsian,
		Unit:     nutrition.UnitPortion,
		Quantity: 1,
		Ingredients: []nutrition.Ingredient{{
			Name: "Rice", Unit: nutrition.UnitGrams, Quantity: 150,
			Macros: nutrition.Macros{Calories: 195, Carbs: 42, Protein: 4, Fat: 0.4},
		}},
		Macros: nutrition.Macros{Calories: 520, Carbs: 60, Protein: 38, Fat: 12},
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON body: %v", err)
	}
	return buf
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	return result
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}
