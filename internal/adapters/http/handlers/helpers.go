package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http/dto"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/logging"
)

// maxJSONBodyBytes caps every request body. Chat messages have their own,
// tighter, configurable limit on top.
const maxJSONBodyBytes = 1 << 20

// parseLimit reads a non-negative integer query parameter, returning def when
// the parameter is absent.
func parseLimit(r *http.Request, param string, def int) (int, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fieldError(param, "must be a non-negative integer")
	}
	return n, nil
}

func fieldError(field, msg string) *domain.ValidationError {
	return &domain.ValidationError{Fields: map[string]string{field: msg}}
}

// writeJSON writes v with status. Encoding failures are logged to the request
// logger; the status line has already gone out by then.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "failed to encode response",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
}

// decodeJSONBody decodes the request body into dst. On failure it writes a 400
// naming what was wrong with the body and returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	msg := "invalid JSON"
	var (
		tooLarge *http.MaxBytesError
		typeErr  *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &tooLarge):
		msg = fmt.Sprintf("must be at most %d bytes", tooLarge.Limit)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		dto.WriteErrorResponse(w, r, fieldError(typeErr.Field, "must be a "+typeErr.Type.String()))
		return false
	}
	dto.WriteErrorResponse(w, r, fieldError("body", msg))
	return false
}

type validatable interface {
	Validate() error
}

// decodeAndValidate decodes the body into dst and runs its Validate. On
// failure it writes the error response and returns false.
func decodeAndValidate[T validatable](w http.ResponseWriter, r *http.Request, dst T) bool {
	if !decodeJSONBody(w, r, dst) {
		return false
	}
	if err := dst.Validate(); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return false
	}
	return true
}
