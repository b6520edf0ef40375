package handlers

import (
	"net/http"

	"github.com/jsamuelsen11/mealplan-assistant/internal/ports"
)

const (
	statusOK       = "ok"
	statusReady    = "ready"
	statusDegraded = "degraded"
	statusNotReady = "not_ready"
)

// HealthHandler handles liveness and readiness HTTP endpoints.
type HealthHandler struct {
	registry ports.HealthRegistry
	optional map[string]bool
}

// NewHealthHandler creates a HealthHandler over registry. Checks named in
// optional do not fail readiness: the assistant keeps answering from its
// fallback generator while the model provider is down, so a failing optional
// check only marks the service degraded.
func NewHealthHandler(registry ports.HealthRegistry, optional ...string) *HealthHandler {
	h := &HealthHandler{registry: registry, optional: make(map[string]bool, len(optional))}
	for _, name := range optional {
		h.optional[name] = true
	}
	return h
}

// Liveness handles GET /health/live. Always returns 200 OK.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": statusOK})
}

// Readiness handles GET /health/ready: 200 "ready" when every check passes,
// 200 "degraded" when only optional checks fail, 503 otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	results := h.registry.CheckAll(r.Context())

	checks := make(map[string]string, len(results))
	status := statusReady
	for name, err := range results {
		if err == nil {
			checks[name] = statusOK
			continue
		}
		checks[name] = err.Error()
		switch {
		case !h.optional[name]:
			status = statusNotReady
		case status == statusReady:
			status = statusDegraded
		}
	}

	code := http.StatusOK
	if status == statusNotReady {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, r, code, map[string]any{
		"status": status,
		"checks": checks,
	})
}
