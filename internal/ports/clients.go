package ports

import (
	"context"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

// GenerateOptions tunes a single completion. Zero values fall back to the
// transport's configured defaults.
type GenerateOptions struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// Transport defines the client port for the text-generation model.
// Implemented by the LLM adapters; called by the assistant service.
// Failures are *domain.Error values of kind Timeout, RateLimit, Connection,
// APIError, ContentFiltered, Unauthorized or EmptyResponse.
type Transport interface {
	// Generate returns the raw model text for prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// ActionExecutor persists a validated entity on behalf of an actor.
// The assistant calls it at most once per detected, valid action.
type ActionExecutor interface {
	// Execute stores entity. The returned error message may be shown to users
	// only through domain.FormatForUser.
	Execute(ctx context.Context, kind nutrition.EntityKind, entity nutrition.Entity, actorID string) error
}

// ActionStore is an ActionExecutor that can also list what it has stored.
type ActionStore interface {
	ActionExecutor

	// ListActions returns the most recent records for actorID, newest first.
	// A limit of zero or less returns every record.
	ListActions(ctx context.Context, actorID string, limit int) ([]nutrition.ActionRecord, error)
}
