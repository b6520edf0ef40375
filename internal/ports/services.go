package ports

import (
	"context"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/chat"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

// AssistantService defines the service port for the chat assistant.
// Implemented by the application layer; called by inbound adapters (handlers
// and the CLI).
type AssistantService interface {
	// Respond runs one strict chat turn: the model reply is scanned for an
	// action, a valid action is executed, an invalid one is reported but not
	// executed. Pipeline failures are folded into the Reply; an error is only
	// returned when ctx ends before a reply can be built.
	Respond(ctx context.Context, message, actorID string) (*chat.Reply, error)

	// GenerateMealWithRecovery asks the model for a meal and repairs,
	// recovers or replaces the result so a valid meal is always returned.
	// Returns domain.ErrValidation for an invalid request.
	GenerateMealWithRecovery(ctx context.Context, req chat.MealRequest) (*chat.Generation, error)

	// GeneratePlanWithRecovery is GenerateMealWithRecovery for plans.
	GeneratePlanWithRecovery(ctx context.Context, req chat.PlanRequest) (*chat.Generation, error)

	// Extract repairs, validates and recovers text offline as kind.
	Extract(ctx context.Context, text string, kind nutrition.EntityKind) (*chat.Extraction, error)

	// ListActions returns the actions executed for actorID, newest first.
	ListActions(ctx context.Context, actorID string, limit int) ([]nutrition.ActionRecord, error)
}
