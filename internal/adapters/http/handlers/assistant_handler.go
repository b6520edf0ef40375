package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http/dto"
	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/config"
	"github.com/jsamuelsen11/mealplan-assistant/internal/ports"
)

const defaultActionLimit = 50

// AssistantHandler handles the chat, generation, extraction and action
// history endpoints.
type AssistantHandler struct {
	service         ports.AssistantService
	defaultActor    string
	maxMessageBytes int
}

// NewAssistantHandler creates a new AssistantHandler. cfg supplies the actor
// used when a request names none and the chat message size limit (zero means
// unlimited).
func NewAssistantHandler(service ports.AssistantService, cfg config.AssistantConfig) *AssistantHandler {
	return &AssistantHandler{
		service:         service,
		defaultActor:    cfg.DefaultActor,
		maxMessageBytes: cfg.MaxMessageBytes,
	}
}

// actor resolves the acting user: the explicit value, then the actor header
// stored by middleware.Actor, then the configured default.
func (h *AssistantHandler) actor(r *http.Request, explicit string) string {
	if id := strings.TrimSpace(explicit); id != "" {
		return id
	}
	if id := middleware.ActorIDFromContext(r.Context()); id != "" {
		return id
	}
	return h.defaultActor
}

// Chat handles POST /api/v1/chat.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if h.maxMessageBytes > 0 && len(req.Message) > h.maxMessageBytes {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Fields: map[string]string{"message": fmt.Sprintf("must be at most %d bytes", h.maxMessageBytes)},
		})
		return
	}

	reply, err := h.service.Respond(r.Context(), req.Message, h.actor(r, req.ActorID))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToChatResponse(reply))
}

// GenerateMeal handles POST /api/v1/meals/generate.
func (h *AssistantHandler) GenerateMeal(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateMealRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	gen, err := h.service.GenerateMealWithRecovery(r.Context(), req.ToDomain())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToGenerationResponse(gen))
}

// GeneratePlan handles POST /api/v1/plans/generate.
func (h *AssistantHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req dto.GeneratePlanRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	gen, err := h.service.GeneratePlanWithRecovery(r.Context(), req.ToDomain())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToGenerationResponse(gen))
}

// Extract handles POST /api/v1/extract. A payload that cannot be recovered is
// still a 200: the body reports success=false with field errors.
func (h *AssistantHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req dto.ExtractRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	kind := req.EntityKind()
	ext, err := h.service.Extract(r.Context(), req.Text, kind)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToExtractResponse(kind, ext))
}

// ListActions handles GET /api/v1/actions?actor_id=&limit=.
func (h *AssistantHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, "limit", defaultActionLimit)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	records, err := h.service.ListActions(r.Context(), h.actor(r, r.URL.Query().Get("actor_id")), limit)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToActionListResponse(records))
}
