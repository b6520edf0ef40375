package dto

import (
	"fmt"
	"strings"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/chat"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

// ChatRequest represents the JSON body for a chat turn.
type ChatRequest struct {
	Message string `json:"message"`
	ActorID string `json:"actor_id,omitempty"`
}

// Validate checks that a message is present.
// Returns a *domain.ValidationError if any checks fail.
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return &domain.ValidationError{Fields: map[string]string{"message": domain.MsgRequired}}
	}
	return nil
}

// GenerateMealRequest represents the JSON body for meal generation. Every
// field is optional. Vocabulary values are normalized, so "dinner" and
// "DINNER" are equivalent.
type GenerateMealRequest struct {
	MealType    string   `json:"meal_type,omitempty"`
	Cuisine     string   `json:"cuisine,omitempty"`
	Calories    float64  `json:"calories,omitempty"`
	Protein     float64  `json:"protein,omitempty"`
	Carbs       float64  `json:"carbs,omitempty"`
	Fat         float64  `json:"fat,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// ToDomain maps the request onto a chat.MealRequest.
func (r *GenerateMealRequest) ToDomain() chat.MealRequest {
	return chat.MealRequest{
		MealType:    nutrition.MealType(nutrition.Normalize(nutrition.FieldMealType, r.MealType)),
		Cuisine:     nutrition.Cuisine(nutrition.Normalize(nutrition.FieldCuisine, r.Cuisine)),
		Calories:    r.Calories,
		Protein:     r.Protein,
		Carbs:       r.Carbs,
		Fat:         r.Fat,
		Ingredients: r.Ingredients,
		Notes:       strings.TrimSpace(r.Notes),
	}
}

// Validate applies the domain request rules.
func (r *GenerateMealRequest) Validate() error {
	req := r.ToDomain()
	return req.Validate()
}

// GeneratePlanRequest represents the JSON body for plan generation. Every
// field is optional.
type GeneratePlanRequest struct {
	Goal          string  `json:"goal,omitempty"`
	Calories      float64 `json:"calories,omitempty"`
	DurationWeeks int     `json:"duration_weeks,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// ToDomain maps the request onto a chat.PlanRequest.
func (r *GeneratePlanRequest) ToDomain() chat.PlanRequest {
	return chat.PlanRequest{
		Goal:          nutrition.Goal(nutrition.Normalize(nutrition.FieldGoal, r.Goal)),
		Calories:      r.Calories,
		DurationWeeks: r.DurationWeeks,
		Notes:         strings.TrimSpace(r.Notes),
	}
}

// Validate applies the domain request rules.
func (r *GeneratePlanRequest) Validate() error {
	req := r.ToDomain()
	return req.Validate()
}

// ExtractRequest represents the JSON body for checking a model payload
// offline.
type ExtractRequest struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// Validate checks that text is present and kind names an entity.
// Returns a *domain.ValidationError if any checks fail.
func (r *ExtractRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Text) == "" {
		fields["text"] = domain.MsgRequired
	}
	if strings.TrimSpace(r.Kind) == "" {
		fields["kind"] = domain.MsgRequired
	} else if _, err := nutrition.ParseEntityKind(r.Kind); err != nil {
		fields["kind"] = fmt.Sprintf("invalid: %q", r.Kind)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// EntityKind returns the parsed kind. Call after Validate.
func (r *ExtractRequest) EntityKind() nutrition.EntityKind {
	k, _ := nutrition.ParseEntityKind(r.Kind)
	return k
}
