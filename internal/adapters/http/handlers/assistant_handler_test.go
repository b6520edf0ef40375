package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http/dto"
	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/chat"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/config"
	"github.com/jsamuelsen11/mealplan-assistant/mocks"
)

func newHandler(t *testing.T) (*handlers.AssistantHandler, *mocks.MockAssistantService) {
	t.Helper()
	svc := mocks.NewMockAssistantService(t)
	h := handlers.NewAssistantHandler(svc, config.AssistantConfig{
		DefaultActor:    "anonymous",
		MaxMessageBytes: 64,
	})
	return h, svc
}

// --- Chat ---

func TestChat_Success(t *testing.T) {
	t.Parallel()

	h, svc := newHandler(t)
	svc.EXPECT().Respond(mock.Anything, "Add my lunch", "user-1").Return(&chat.Reply{
		RunID: "run-1",
		Text:  "Saved your lunch.",
		Action: &chat.ActionResult{
			Kind:    nutrition.ActionAddMeal,
			Success: true,
			Entity:  nutrition.MealEntity(validMeal()),
		},
	}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		jsonBody(t, map[string]string{"message": "Add my lunch", "actor_id": "user-1"}))
	h.Chat(rec, req)

	requireStatus(t, rec, http.StatusOK)

	resp := decodeJSON[dto.ChatResponse](t, rec)
	assert.Equal(t, "Saved your lunch.", resp.Text)
	require.NotNil(t, resp.Action)
	assert.Equal(t, "ADD_MEAL", resp.Action.Kind)
	assert.True(t, resp.Action.Success)
}

func TestChat_ActorResolution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		bodyActor string
		ctxActor  string
		want      string
	}{
		{name: "body wins", bodyActor: "body-user", ctxActor: "header-user", want: "body-user"},
		{name: "header from context", ctxActor: "header-user", want: "header-user"},
		{name: "configured default", want: "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, svc := newHandler(t)
			svc.EXPECT().Respond(mock.Anything, "hello", tt.want).Return(&chat.Reply{Text: "Hi!"}, nil)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
				jsonBody(t, map[string]string{"message": "hello", "actor_id": tt.bodyActor}))
			if tt.ctxActor != "" {
				req = req.WithContext(middleware.WithActorID(req.Context(), tt.ctxActor))
			}
			h.Chat(rec, req)

			requireStatus(t, rec, http.StatusOK)
		})
	}
}

func TestChat_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "invalid JSON", body: `{"message":`, wantField: "body.body"},
		{name: "wrong type", body: `{"message": 42}`, wantField: "body.message"},
		{name: "body over limit", body: `{"message":"` + strings.Repeat("a", 1<<20) + `"}`, wantField: "body.body"},
		{name: "missing message", body: `{}`, wantField: "body.message"},
		{name: "message too large", body: `{"message":"` + strings.Repeat("a", 65) + `"}`, wantField: "body.message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, _ := newHandler(t)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(tt.body))
			h.Chat(rec, req)

			requireStatus(t, rec, http.StatusBadRequest)
			resp := decodeJSON[dto.ErrorResponse](t, rec)
			require.Len(t, resp.Errors, 1)
			assert.Equal(t, tt.wantField, resp.Errors[0].Location)
		})
	}
}

func TestChat_CancelledContext(t *testing.T) {
	t.Parallel()

	h, svc := newHandler(t)
	svc.EXPECT().Respond(mock.Anything, mock.Anything, mock.Anything).Return(nil, context.Canceled)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", jsonBody(t, map[string]string{"message": "hi"}))
	h.Chat(rec, req)

	requireStatus(t, rec, http.StatusInternalServerError)
	resp := decodeJSON[dto.ErrorResponse](t, rec)
	assert.Equal(t, domain.GenericUserMessage, resp.Detail)
}

// --- Generation ---

func TestGenerateMeal_Success(t *testing.T) {
	t.Parallel()

	h, svc := newHandler(t)
	svc.EXPECT().GenerateMealWithRecovery(mock.Anything, mock.MatchedBy(func(req chat.MealRequest) bool {
		return req.MealType == nutrition.MealDinner && req.Cuisine == nutrition.CuisineItalian && req.Calories == 700
	})).Return(&chat.Generation{
		RunID:           "run-2",
		Entity:          nutrition.MealEntity(validMeal()),
		RetryCount:      1,
		HadRecovery:     true,
		RecoveryActions: []string{"cuisine: normalized"},
	}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/meals/generate",
		jsonBody(t, map[string]any{"meal_type": "dinner", "cuisine": "Italian", "calories": 700}))
	h.GenerateMeal(rec, req)

	requireStatus(t, rec, http.StatusOK)

	resp := decodeJSON[dto.GenerationResponse](t, rec)
	require.NotNil(t, resp.Meal)
	assert.Nil(t, resp.Plan)
	assert.Equal(t, "Chicken rice bowl", resp.Meal.Name)
	assert.Equal(t, 1, resp.RetryCount)
	assert.True(t, resp.HadRecovery)
	assert.Equal(t, []string{"cuisine: normalized"}, resp.RecoveryActions)
}

func TestGenerateMeal_InvalidRequest(t *testing.T) {
	t.Parallel()

	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/meals/generate",
		jsonBody(t, map[string]any{"calories": -10}))
	h.GenerateMeal(rec, req)

	requireStatus(t, rec, http.StatusBadRequest)
}

func TestGeneratePlan_Success(t *testing.T) {
	t.Parallel()

	h, svc := newHandler(t)
	plan := nutrition.Plan{
		Name:          "Lean four weeks",
		Goal:          nutrition.GoalWeightLoss,
		DurationWeeks: 4,
		Meals:         []nutrition.Meal{validMeal()},
		Macros:        nutrition.Macros{Calories: 1800, Carbs: 180, Protein: 140, Fat: 60},
	}
	svc.EXPECT().GeneratePlanWithRecovery(mock.Anything, chat.PlanRequest{
		Goal:          nutrition.GoalWeightLoss,
		Calories:      1800,
		DurationWeeks: 4,
	}).Return(&chat.Generation{Entity: nutrition.PlanEntity(plan), UsedFallback: true}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/generate",
		jsonBody(t, map[string]any{"goal": "WEIGHT_LOSS", "calories": 1800, "duration_weeks": 4}))
	h.GeneratePlan(rec, req)

	requireStatus(t, rec, http.StatusOK)

	resp := decodeJSON[dto.GenerationResponse](t, rec)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, "Lean four weeks", resp.Plan.Name)
	assert.True(t, resp.UsedFallback)
}

func TestGeneratePlan_InvalidRequest(t *testing.T) {
	t.Parallel()

	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/generate",
		jsonBody(t, map[string]any{"duration_weeks": -1}))
	h.GeneratePlan(rec, req)

	requireStatus(t, rec, http.StatusBadRequest)
	resp := decodeJSON[dto.ErrorResponse](t, rec)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "body.duration_weeks", resp.Errors[0].Location)
}

// --- Extract ---

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ext        *chat.Extraction
		err        error
		wantStatus int
		verify     func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:       "recovered payload",
			ext:        &chat.Extraction{Success: true, Entity: nutrition.MealEntity(validMeal()), HadRecovery: true},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rec *httptest.ResponseRecorder) {
				t.Helper()
				resp := decodeJSON[map[string]any](t, rec)
				assert.Equal(t, true, resp["success"])
				assert.Equal(t, "meal", resp["kind"])
				assert.Equal(t, true, resp["had_recovery"])
			},
		},
		{
			name: "unrecoverable payload is still 200",
			ext: &chat.Extraction{
				Message: "meal is missing required fields",
				Errors:  map[string]string{"name": "is required"},
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rec *httptest.ResponseRecorder) {
				t.Helper()
				resp := decodeJSON[dto.ExtractResponse](t, rec)
				assert.False(t, resp.Success)
				require.Len(t, resp.Errors, 1)
				assert.Equal(t, "entity.name", resp.Errors[0].Location)
			},
		},
		{
			name:       "unsupported kind",
			err:        domain.NewError(domain.KindUnsupportedOperation, "no schema for kind"),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, svc := newHandler(t)
			svc.EXPECT().Extract(mock.Anything, `{"name": "x"}`, nutrition.KindMeal).Return(tt.ext, tt.err)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/extract",
				jsonBody(t, map[string]string{"text": `{"name": "x"}`, "kind": "meal"}))
			h.Extract(rec, req)

			requireStatus(t, rec, tt.wantStatus)
			if tt.verify != nil {
				tt.verify(t, rec)
			}
		})
	}
}

func TestExtract_InvalidKind(t *testing.T) {
	t.Parallel()

	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract",
		jsonBody(t, map[string]string{"text": "{}", "kind": "recipe"}))
	h.Extract(rec, req)

	requireStatus(t, rec, http.StatusBadRequest)
}

// --- Actions ---

func TestListActions(t *testing.T) {
	t.Parallel()

	h, svc := newHandler(t)
	svc.EXPECT().ListActions(mock.Anything, "user-1", 10).Return([]nutrition.ActionRecord{{
		ID:        "a-1",
		Kind:      nutrition.KindMeal,
		ActorID:   "user-1",
		Name:      "Chicken rice bowl",
		Payload:   json.RawMessage(`{"name":"Chicken rice bowl"}`),
		CreatedAt: testTime,
	}}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/actions?actor_id=user-1&limit=10", http.NoBody)
	h.ListActions(rec, req)

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.ActionListResponse](t, rec)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "a-1", resp.Actions[0].ID)
}

func TestListActions_DefaultsFromHeader(t *testing.T) {
	t.Parallel()

	h, svc := newHandler(t)
	svc.EXPECT().ListActions(mock.Anything, "header-user", 50).Return([]nutrition.ActionRecord{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/actions", http.NoBody)
	req = req.WithContext(middleware.WithActorID(req.Context(), "header-user"))
	h.ListActions(rec, req)

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.ActionListResponse](t, rec)
	assert.Equal(t, 0, resp.Count)
}

func TestListActions_InvalidLimit(t *testing.T) {
	t.Parallel()

	h, _ := newHandler(t)

	for _, raw := range []string{"abc", "-1"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/actions?limit="+raw, http.NoBody)
		h.ListActions(rec, req)

		requireStatus(t, rec, http.StatusBadRequest)
	}
}

func TestListActions_StoreFailure(t *testing.T) {
	t.Parallel()

	h, svc := newHandler(t)
	svc.EXPECT().ListActions(mock.Anything, "anonymous", 50).
		Return(nil, domain.NewError(domain.KindUnknown, "listing actions"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/actions", http.NoBody)
	h.ListActions(rec, req)

	requireStatus(t, rec, http.StatusInternalServerError)
	resp := decodeJSON[dto.ErrorResponse](t, rec)
	assert.Equal(t, domain.GenericUserMessage, resp.Detail)
}
