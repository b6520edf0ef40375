package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	adapthttp "github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http"
	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/config"
	"github.com/jsamuelsen11/mealplan-assistant/mocks"
)

var testAssistantConfig = config.AssistantConfig{DefaultActor: "anonymous", MaxMessageBytes: 1024}

func newTestRouter(t *testing.T, mws ...func(http.Handler) http.Handler) (http.Handler, *mocks.MockAssistantService) {
	t.Helper()
	svc := mocks.NewMockAssistantService(t)
	registry := mocks.NewMockHealthRegistry(t)

	ah := handlers.NewAssistantHandler(svc, testAssistantConfig)
	hh := handlers.NewHealthHandler(registry)

	router := adapthttp.NewRouter(ah, hh, mws...)
	return router, svc
}

func TestRouter_AllRoutesRegistered(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	expectedRoutes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health/live"},
		{http.MethodGet, "/health/ready"},
		{http.MethodPost, "/api/v1/chat"},
		{http.MethodPost, "/api/v1/meals/generate"},
		{http.MethodPost, "/api/v1/plans/generate"},
		{http.MethodPost, "/api/v1/extract"},
		{http.MethodGet, "/api/v1/actions"},
	}

	chiRouter, ok := router.(*chi.Mux)
	if !ok {
		t.Fatal("router is not *chi.Mux")
	}

	registered := make(map[string]bool)
	err := chi.Walk(chiRouter, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	if err != nil {
		t.Fatalf("chi.Walk error: %v", err)
	}

	for _, expected := range expectedRoutes {
		key := expected.method + " " + expected.path
		if !registered[key] {
			t.Errorf("route %s not registered", key)
		}
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	t.Parallel()

	svc := mocks.NewMockAssistantService(t)
	registry := mocks.NewMockHealthRegistry(t)

	ah := handlers.NewAssistantHandler(svc, testAssistantConfig)
	hh := handlers.NewHealthHandler(registry)

	called := false
	testMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	router := adapthttp.NewRouter(ah, hh, testMW)

	registry.EXPECT().CheckAll(mock.Anything).Return(map[string]error{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	router.ServeHTTP(rec, req)

	if !called {
		t.Error("middleware was not called")
	}
}

func TestRouter_IntegrationListActions(t *testing.T) {
	t.Parallel()

	router, svc := newTestRouter(t, middleware.Actor(""))

	svc.EXPECT().ListActions(mock.Anything, "user-9", 50).Return([]nutrition.ActionRecord{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/actions", nil)
	req.Header.Set("X-Actor-ID", "user-9")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRouter_NotFoundReturns404(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
