// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/chat"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

// ChatResponse represents the outcome of a chat turn.
type ChatResponse struct {
	RunID      string          `json:"run_id"`
	Text       string          `json:"text"`
	Action     *ActionResponse `json:"action,omitempty"`
	RetryCount int             `json:"retry_count"`
}

// ActionResponse reports an action detected in the model reply.
type ActionResponse struct {
	Kind    string            `json:"kind"`
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Entity  *nutrition.Entity `json:"entity,omitempty"`
}

// ToChatResponse converts a chat.Reply to an HTTP response DTO.
func ToChatResponse(reply *chat.Reply) ChatResponse {
	resp := ChatResponse{
		RunID:      reply.RunID,
		Text:       reply.Text,
		RetryCount: reply.RetryCount,
	}
	if a := reply.Action; a != nil {
		resp.Action = &ActionResponse{
			Kind:    a.Kind.String(),
			Success: a.Success,
			Message: a.Message,
		}
		if !a.Entity.IsZero() {
			entity := a.Entity
			resp.Action.Entity = &entity
		}
	}
	return resp
}

// GenerationResponse represents a best-effort meal or plan generation. Exactly
// one of Meal and Plan is set.
type GenerationResponse struct {
	RunID           string          `json:"run_id"`
	Meal            *nutrition.Meal `json:"meal,omitempty"`
	Plan            *nutrition.Plan `json:"plan,omitempty"`
	RetryCount      int             `json:"retry_count"`
	HadRecovery     bool            `json:"had_recovery"`
	UsedFallback    bool            `json:"used_fallback"`
	RecoveryActions []string        `json:"recovery_actions"`
}

// ToGenerationResponse converts a chat.Generation to an HTTP response DTO.
func ToGenerationResponse(gen *chat.Generation) GenerationResponse {
	actions := gen.RecoveryActions
	if actions == nil {
		actions = []string{}
	}
	return GenerationResponse{
		RunID:           gen.RunID,
		Meal:            gen.Entity.Meal,
		Plan:            gen.Entity.Plan,
		RetryCount:      gen.RetryCount,
		HadRecovery:     gen.HadRecovery,
		UsedFallback:    gen.UsedFallback,
		RecoveryActions: actions,
	}
}

// ExtractResponse represents the outcome of checking a payload offline.
type ExtractResponse struct {
	Success         bool              `json:"success"`
	Kind            string            `json:"kind"`
	Entity          *nutrition.Entity `json:"entity,omitempty"`
	Message         string            `json:"message,omitempty"`
	Errors          []ErrorDetail     `json:"errors,omitempty"`
	HadRecovery     bool              `json:"had_recovery"`
	RecoveryActions []string          `json:"recovery_actions"`
}

// ToExtractResponse converts a chat.Extraction to an HTTP response DTO.
// Field errors are reported at "entity.<field>" locations, sorted.
func ToExtractResponse(kind nutrition.EntityKind, ext *chat.Extraction) ExtractResponse {
	resp := ExtractResponse{
		Success:         ext.Success,
		Kind:            kind.String(),
		Message:         ext.Message,
		HadRecovery:     ext.HadRecovery,
		RecoveryActions: ext.RecoveryActions,
	}
	if resp.RecoveryActions == nil {
		resp.RecoveryActions = []string{}
	}
	if !ext.Entity.IsZero() {
		entity := ext.Entity
		resp.Entity = &entity
	}
	if len(ext.Errors) > 0 {
		resp.Errors = make([]ErrorDetail, 0, len(ext.Errors))
		for field, msg := range ext.Errors {
			resp.Errors = append(resp.Errors, ErrorDetail{Location: "entity." + field, Message: msg})
		}
		sort.Slice(resp.Errors, func(i, j int) bool {
			return resp.Errors[i].Location < resp.Errors[j].Location
		})
	}
	return resp
}

// ActionRecordResponse represents a persisted action in HTTP responses.
type ActionRecordResponse struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	ActorID   string          `json:"actor_id"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt string          `json:"created_at"`
}

// ActionListResponse represents a list of persisted actions.
type ActionListResponse struct {
	Actions []ActionRecordResponse `json:"actions"`
	Count   int                    `json:"count"`
}

// ToActionListResponse converts action records to an HTTP list response DTO.
func ToActionListResponse(records []nutrition.ActionRecord) ActionListResponse {
	items := make([]ActionRecordResponse, len(records))
	for i, rec := range records {
		items[i] = ActionRecordResponse{
			ID:        rec.ID,
			Kind:      rec.Kind.String(),
			ActorID:   rec.ActorID,
			Name:      rec.Name,
			Payload:   rec.Payload,
			CreatedAt: rec.CreatedAt.Format(time.RFC3339Nano),
		}
	}
	return ActionListResponse{
		Actions: items,
		Count:   len(items),
	}
}
