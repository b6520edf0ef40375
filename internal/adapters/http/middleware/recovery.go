package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http/dto"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
)

// Recovery returns middleware that turns a handler panic into a 500 problem
// response. The panic value and stack are logged and never reach the client;
// the response detail is the generic user message. When the handler already
// started its response only the log entry is emitted.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)

			defer func() {
				v := recover()
				if v == nil {
					return
				}

				// RequestID runs inside Recovery, so the ID is only visible
				// on the response header by now.
				logger.ErrorContext(r.Context(), "panic recovered",
					slog.String("panic", fmt.Sprint(v)),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", rw.Header().Get(headerRequestID)),
				)

				if !rw.headerWritten {
					err := domain.NewError(domain.KindUnknown, "handler panic").
						WithDetails("panic", fmt.Sprint(v))
					dto.WriteErrorResponse(rw, r, err)
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
