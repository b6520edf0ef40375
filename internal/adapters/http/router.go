// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http/handlers"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given.
func NewRouter(
	assistantHandler *handlers.AssistantHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	// Health endpoints (outside /api/v1 prefix).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Route("/api/v1", func(r chi.Router) {
		// Strict chat turn; valid actions are executed.
		r.Post("/chat", assistantHandler.Chat)

		// Best-effort generation; always returns an entity.
		r.Post("/meals/generate", assistantHandler.GenerateMeal)
		r.Post("/plans/generate", assistantHandler.GeneratePlan)

		r.Post("/extract", assistantHandler.Extract)
		r.Get("/actions", assistantHandler.ListActions)
	})

	return r
}
