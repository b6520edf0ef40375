package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/httpclient"
)

const (
	headerRequestID     = "X-Request-ID"
	headerCorrelationID = "X-Correlation-ID"
)

// maxIDLength bounds inbound request and correlation IDs. Longer values are
// replaced rather than truncated so that a clipped ID never aliases another.
const maxIDLength = 128

// requestIDKey is the middleware's own key; httpclient keeps a separate one.
type requestIDKey struct{}

// WithRequestID returns a new context with the given request ID stored in it.
// It also stores the ID via httpclient.WithRequestID so that outbound HTTP
// calls automatically include the X-Request-ID header.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey{}, id)
	ctx = httpclient.WithRequestID(ctx, id)
	return ctx
}

// RequestIDFromContext extracts the request ID from the context.
// Returns an empty string if no request ID is stored.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// RequestID returns middleware that reuses the incoming X-Request-ID or
// assigns a random UUID. The ID is stored in the request context, echoed as a
// response header, and forwarded on calls to the model provider.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sanitizeID(r.Header.Get(headerRequestID))
			if id == "" {
				id = uuid.NewString()
			}
			ctx := WithRequestID(r.Context(), id)
			w.Header().Set(headerRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// correlationIDKey is the context key for storing correlation IDs.
type correlationIDKey struct{}

// WithCorrelationID returns a new context with the given correlation ID stored
// in it. It also stores the ID via httpclient.WithCorrelationID so that
// outbound HTTP calls automatically include the X-Correlation-ID header.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, correlationIDKey{}, id)
	ctx = httpclient.WithCorrelationID(ctx, id)
	return ctx
}

// CorrelationIDFromContext extracts the correlation ID from the context.
// Returns an empty string if no correlation ID is stored.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// CorrelationID returns middleware that reuses a well-formed inbound
// X-Correlation-ID or falls back to the request ID. It must run after
// RequestID.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sanitizeID(r.Header.Get(headerCorrelationID))
			if id == "" {
				id = RequestIDFromContext(r.Context())
			}
			ctx := WithCorrelationID(r.Context(), id)
			w.Header().Set(headerCorrelationID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sanitizeID returns the trimmed inbound ID, or "" when it is too long or
// contains anything outside printable ASCII. IDs end up in log lines and
// outbound headers.
func sanitizeID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > maxIDLength {
		return ""
	}
	for i := range len(id) {
		if id[i] < 0x21 || id[i] > 0x7e {
			return ""
		}
	}
	return id
}
