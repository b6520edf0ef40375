// Package chat holds the request and result types exchanged with the
// assistant: chat replies with their action outcome, and best-effort meal and
// plan generations.
package chat

import (
	"strings"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

// ActionResult reports what happened to an action detected in a reply.
type ActionResult struct {
	Kind    nutrition.ActionKind
	Success bool
	// Message is user-safe. It is empty on success.
	Message string
	Entity  nutrition.Entity
}

// Reply is the terminal result of a chat turn. Text is the model's prose with
// action markup removed, or a user-safe error message when the model could not
// be reached.
type Reply struct {
	RunID      string
	Text       string
	Action     *ActionResult
	RetryCount int
}

// Generation is the result of a best-effort meal or plan generation. Entity is
// always set and schema-valid.
type Generation struct {
	RunID           string
	Entity          nutrition.Entity
	RetryCount      int
	HadRecovery     bool
	UsedFallback    bool
	RecoveryActions []string
}

// Extraction is the outcome of checking a piece of text offline, with
// recovery.
type Extraction struct {
	Success         bool
	Entity          nutrition.Entity
	Errors          map[string]string
	Message         string
	HadRecovery     bool
	RecoveryActions []string
}

// MealRequest describes the meal a user asks for. All fields are optional.
type MealRequest struct {
	MealType    nutrition.MealType
	Cuisine     nutrition.Cuisine
	Calories    float64
	Protein     float64
	Carbs       float64
	Fat         float64
	Ingredients []string
	Notes       string
}

// Validate rejects negative targets and blank ingredient names.
func (r *MealRequest) Validate() error {
	fields := make(map[string]string)
	nonNegative(fields, "calories", r.Calories)
	nonNegative(fields, "protein", r.Protein)
	nonNegative(fields, "carbs", r.Carbs)
	nonNegative(fields, "fat", r.Fat)
	for _, name := range r.Ingredients {
		if strings.TrimSpace(name) == "" {
			fields["ingredients"] = "must not contain blank names"
			break
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// PlanRequest describes the plan a user asks for. All fields are optional.
type PlanRequest struct {
	Goal          nutrition.Goal
	Calories      float64
	DurationWeeks int
	Notes         string
}

// Validate rejects negative targets.
func (r *PlanRequest) Validate() error {
	fields := make(map[string]string)
	nonNegative(fields, "calories", r.Calories)
	if r.DurationWeeks < 0 {
		fields["duration_weeks"] = "must not be negative"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func nonNegative(fields map[string]string, name string, v float64) {
	if v < 0 {
		fields[name] = "must not be negative"
	}
}
