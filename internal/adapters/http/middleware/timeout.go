package middleware

import (
	"context"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http/dto"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
)

// errRequestTimeout is written when a handler overruns its deadline. Model
// calls dominate request latency, so the client is told it may retry.
var errRequestTimeout = domain.NewError(domain.KindTimeout, "request timed out").AsRecoverable()

// Timeout returns middleware that enforces a request deadline. The handler's
// context carries the deadline, so a pipeline run stops retrying once it
// passes. If the handler has not completed by then, a 504 problem response is
// written and anything the handler buffered is discarded.
//
// The handler runs in its own goroutine; tw.mu decides which side writes.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{w: w}
			done := make(chan struct{})

			go func() {
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.flush()
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.timedOut = true
				dto.WriteErrorResponse(w, r, errRequestTimeout)
			}
		})
	}
}

// timeoutWriter buffers the handler's response until it finishes. Once
// timedOut is set, late writes from the handler are dropped.
type timeoutWriter struct {
	w           http.ResponseWriter
	mu          sync.Mutex
	header      http.Header
	buf         []byte
	statusCode  int
	wroteHeader bool
	timedOut    bool
}

func (tw *timeoutWriter) Header() http.Header {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.header == nil {
		tw.header = make(http.Header)
	}
	return tw.header
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.wroteHeader {
		tw.statusCode = http.StatusOK
		tw.wroteHeader = true
	}
	tw.buf = append(tw.buf, b...)
	return len(b), nil
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.wroteHeader {
		return
	}
	tw.statusCode = code
	tw.wroteHeader = true
}

// flush copies the buffered response to w. Callers hold tw.mu.
func (tw *timeoutWriter) flush() {
	if tw.header != nil {
		maps.Copy(tw.w.Header(), tw.header)
	}
	if tw.wroteHeader {
		tw.w.WriteHeader(tw.statusCode)
	}
	if len(tw.buf) > 0 {
		_, _ = tw.w.Write(tw.buf)
	}
}
