package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/logging"
)

// Logging returns middleware that logs the start and end of every request. It
// derives a child logger carrying request_id, correlation_id and, when known,
// actor_id, and stores it with logging.WithLogger; handlers and the assistant
// pipeline log through it.
//
// Completion is logged at INFO, WARN for 4xx and ERROR for 5xx. Request headers
// are dumped at DEBUG with credentials redacted.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			child := logger.With(
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("correlation_id", CorrelationIDFromContext(ctx)),
			)
			if actorID := ActorIDFromContext(ctx); actorID != "" {
				child = child.With(slog.String("actor_id", actorID))
			}
			ctx = logging.WithLogger(ctx, child)

			child.InfoContext(ctx, "request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			if child.Enabled(ctx, slog.LevelDebug) {
				child.LogAttrs(ctx, slog.LevelDebug, "request headers",
					slog.Attr{Key: "headers", Value: slog.GroupValue(RedactHeaders(r.Header)...)})
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			child.LogAttrs(ctx, completionLevel(rw.statusCode), "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.statusCode),
				slog.Int64("bytes", rw.written),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

func completionLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// responseWriter records the status code and body size a handler wrote.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
	written       int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code and delegates to the underlying writer.
// Only the first call takes effect; subsequent calls are ignored.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.headerWritten {
		return
	}
	rw.statusCode = code
	rw.headerWritten = true
	rw.ResponseWriter.WriteHeader(code)
}

// Write delegates to the underlying writer, triggering an implicit 200 OK if
// WriteHeader has not been called.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.headerWritten = true
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap returns the underlying http.ResponseWriter so that
// http.ResponseController and type assertions (http.Flusher, http.Hijacker)
// work through the wrapper.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
