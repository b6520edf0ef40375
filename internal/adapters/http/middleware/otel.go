package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/telemetry"
)

// OpenTelemetry returns middleware that opens a server span per request,
// continuing any W3C trace context from the caller, and records request
// metrics. After the handler returns the span is renamed to the chi route
// pattern, so /api/v1/actions?limit=5 and /api/v1/actions share one name.
//
// A nil metrics skips metric recording.
func OpenTelemetry(metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			tracer := otel.GetTracerProvider().Tracer("middleware")
			ctx, span := tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					telemetry.AttrHTTPMethod.String(r.Method),
					attribute.String("http.url", r.URL.String()),
				),
			)
			defer span.End()

			if actor := ActorIDFromContext(ctx); actor != "" {
				span.SetAttributes(telemetry.AttrActorID.String(actor))
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			route := routePattern(r)
			if route != "" {
				span.SetName(fmt.Sprintf("HTTP %s %s", r.Method, route))
				span.SetAttributes(telemetry.AttrHTTPRoute.String(route))
			}

			status := rw.statusCode
			span.SetAttributes(telemetry.AttrHTTPStatus.Int(status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}

			recordServerMetrics(ctx, metrics, r.Method, route, start, status)
		})
	}
}

// routePattern returns the matched chi pattern, or "" outside a chi router or
// when nothing matched.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}

func recordServerMetrics(ctx context.Context, metrics *telemetry.Metrics, method, route string, start time.Time, status int) {
	if metrics == nil {
		return
	}

	result := "success"
	if status >= http.StatusBadRequest {
		result = "error"
	}

	kv := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPStatus.Int(status),
		telemetry.AttrResult.String(result),
	}
	if route != "" {
		kv = append(kv, telemetry.AttrHTTPRoute.String(route))
	}
	attrs := metric.WithAttributes(kv...)

	metrics.ServerRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	metrics.ServerRequestTotal.Add(ctx, 1, attrs)
}
