package middleware

import (
	"context"
	"net/http"
	"strings"
)

// DefaultActorHeader carries the acting user's ID when the request body does
// not name one.
const DefaultActorHeader = "X-Actor-ID"

type actorIDKey struct{}

// WithActorID returns a new context carrying the acting user's ID.
func WithActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, actorIDKey{}, id)
}

// ActorIDFromContext extracts the actor ID from the context.
// Returns an empty string if no actor is stored.
func ActorIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(actorIDKey{}).(string); ok {
		return id
	}
	return ""
}

// Actor returns middleware that reads the acting user's ID from header and
// stores it in the request context. An empty header name uses
// DefaultActorHeader. Requests without the header pass through unchanged.
//
// Register it before Logging so the request logger carries actor_id.
func Actor(header string) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultActorHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(header))
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActorID(r.Context(), id)))
		})
	}
}
