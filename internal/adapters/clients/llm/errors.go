// Package llm implements the text-generation transports: Gemini's
// generateContent API and Ollama's chat API. Provider responses and failures
// are translated into *domain.Error values here so the pipeline's retry
// policy and classifier never see provider-specific shapes.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
)

// maxErrorBodySize limits how much of an error response body we read.
const maxErrorBodySize = 1 << 20 // 1 MB

// MsgRequestRejected is the message of a rejected (400) request. Validation
// messages reach end users, so the provider's own text is kept in the cause.
const MsgRequestRejected = "the request was rejected by the model provider"

// errorBody covers both provider error shapes: Gemini's
// {"error": {"code", "message", "status"}} and Ollama's {"error": "..."}.
type errorBody struct {
	Error json.RawMessage `json:"error"`
}

type geminiError struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// TranslateHTTPError maps a non-2xx provider response to a domain error.
//
//	400       -> VALIDATION_ERROR (fixed message, provider text as cause)
//	401, 403  -> UNAUTHORIZED
//	429       -> RATE_LIMIT (recoverable)
//	408, 504  -> TIMEOUT
//	other 5xx -> CONNECTION
//	otherwise -> API_ERROR
func TranslateHTTPError(resp *http.Response, provider string) *domain.Error {
	detail := parseErrorDetail(resp)
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	msg := fmt.Sprintf("%s: %s", provider, detail)

	var e *domain.Error
	switch code := resp.StatusCode; {
	case code == http.StatusBadRequest:
		e = domain.NewError(domain.KindValidation, MsgRequestRejected).WithCause(errors.New(msg))
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		e = domain.NewError(domain.KindUnauthorized, msg)
	case code == http.StatusTooManyRequests:
		e = domain.NewError(domain.KindRateLimit, msg).AsRecoverable()
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		e = domain.NewError(domain.KindTimeout, msg)
	case code >= http.StatusInternalServerError:
		e = domain.NewError(domain.KindConnection, msg)
	default:
		e = domain.NewError(domain.KindAPI, msg)
	}
	return e.WithDetails("status", resp.StatusCode).WithDetails("provider", provider)
}

// TranslateTransportError maps a failure that produced no usable response:
// deadlines become TIMEOUT, everything else (refused connections, an open
// circuit breaker) becomes CONNECTION.
func TranslateTransportError(err error, provider string) *domain.Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return domain.NewError(domain.KindTimeout, provider+": request timed out").WithCause(err)
	case errors.Is(err, context.Canceled):
		return domain.NewError(domain.KindTimeout, provider+": request cancelled").WithCause(err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return domain.NewError(domain.KindConnection, provider+": circuit breaker open").WithCause(err)
	default:
		return domain.NewError(domain.KindConnection, provider+": request failed").WithCause(err)
	}
}

// parseErrorDetail reads the provider's error message, or "" when the body
// has none.
func parseErrorDetail(resp *http.Response) string {
	if resp.Body == nil {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return ""
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Error) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(eb.Error, &s); err == nil {
		return s
	}
	var ge geminiError
	if err := json.Unmarshal(eb.Error, &ge); err == nil {
		return ge.Message
	}
	return ""
}
