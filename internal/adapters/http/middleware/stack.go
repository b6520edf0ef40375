// Package middleware provides HTTP middleware for the inbound request pipeline.
//
// Inbound composes them with Chain in this order:
//
//	Recovery, RequestID, CorrelationID, Actor, OpenTelemetry, Logging, Timeout
//
// Actor must precede Logging so request logs carry actor_id, and Timeout sits
// innermost so its deadline reaches the assistant pipeline and nothing else.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/telemetry"
)

// InboundConfig holds what the inbound stack needs from the server.
type InboundConfig struct {
	Logger  *slog.Logger
	Metrics *telemetry.Metrics
	// ActorHeader names the header carrying the caller's actor ID. Empty
	// means X-Actor-ID.
	ActorHeader string
	// Timeout bounds each request. Zero disables it.
	Timeout time.Duration
}

// Inbound returns the service's full middleware stack in the order above.
func Inbound(cfg InboundConfig) func(http.Handler) http.Handler {
	mws := []func(http.Handler) http.Handler{
		Recovery(cfg.Logger),
		RequestID(),
		CorrelationID(),
		Actor(cfg.ActorHeader),
		OpenTelemetry(cfg.Metrics),
		Logging(cfg.Logger),
	}
	if cfg.Timeout > 0 {
		mws = append(mws, Timeout(cfg.Timeout))
	}
	return Chain(mws...)
}

// Chain composes middlewares into one, outermost first:
//
//	Chain(Recovery, RequestID, Logging)(h) == Recovery(RequestID(Logging(h)))
func Chain(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(handler http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}
