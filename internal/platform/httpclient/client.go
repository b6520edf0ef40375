// Package httpclient is the outbound HTTP layer for model providers. Every
// call passes a circuit breaker, an optional rate limiter, request/correlation
// ID forwarding and a client span, in that order, and is made exactly once:
// retrying is the assistant pipeline's job, and it needs to see each
// classified failure to decide.
//
//	client := httpclient.New(&cfg.LLM, "ollama", metrics, logger)
//	resp, err := client.Do(ctx, req)
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/config"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/telemetry"
)

type (
	requestIDKey     struct{}
	correlationIDKey struct{}
)

// forwarded lists the context values copied onto every outbound request.
var forwarded = []struct {
	key    any
	header string
}{
	{requestIDKey{}, "X-Request-ID"},
	{correlationIDKey{}, "X-Correlation-ID"},
}

// WithRequestID stores id for forwarding as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// WithCorrelationID stores id for forwarding as X-Correlation-ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// StatusError reports a response the breaker counts as a provider failure:
// 429 and any 5xx. The response is still returned to the caller with its body
// open so the provider's error payload can be read.
type StatusError struct {
	Service    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.Service)
}

// BreakerError is returned by HealthCheck while the breaker is not closed.
type BreakerError struct {
	Service string
	State   gobreaker.State
}

func (e *BreakerError) Error() string {
	if e.State == gobreaker.StateHalfOpen {
		return fmt.Sprintf("%s: degraded (circuit breaker half-open)", e.Service)
	}
	return fmt.Sprintf("%s: failing (circuit breaker %s)", e.Service, e.State)
}

// Client sends requests to a single model provider.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	serviceName string
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	limiter     *rate.Limiter // nil when rate limiting is disabled
	metrics     *telemetry.Metrics
	logger      *slog.Logger
}

// New creates a Client for the provider named serviceName, which labels the
// breaker, spans and metrics. A nil metrics disables metric recording.
func New(cfg *config.LLMConfig, serviceName string, metrics *telemetry.Metrics, logger *slog.Logger) *Client {
	maxFailures := cfg.CircuitBreaker.MaxFailures
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        serviceName,
		MaxRequests: toUint32(cfg.CircuitBreaker.HalfOpenLimit),
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= maxFailures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	var limiter *rate.Limiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.BurstSize)
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		serviceName: serviceName,
		breaker:     cb,
		limiter:     limiter,
		metrics:     metrics,
		logger:      logger,
	}
}

// countsAsSuccess keeps caller cancellations out of the breaker's failure
// count: a client that hung up says nothing about the provider.
func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// Do sends req once.
//
// For a status below 500 other than 429, resp is non-nil with an open body
// that the caller must close. For 429 and 5xx, both resp (with open body) and
// a *StatusError are returned; the caller should close resp.Body. When the
// breaker rejects the call or the round trip fails, resp is nil.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		for _, f := range forwarded {
			if id, ok := ctx.Value(f.key).(string); ok && id != "" {
				req.Header.Set(f.header, id)
			}
		}

		spanCtx, span := c.startSpan(ctx, req)
		defer span.End()

		r, err := c.httpClient.Do(req.WithContext(spanCtx))
		if err == nil && isFailureStatus(r.StatusCode) {
			err = &StatusError{Service: c.serviceName, StatusCode: r.StatusCode}
		}
		endSpan(span, r, err)
		return r, err
	})

	c.recordMetrics(ctx, req.Method, start, resp, err)

	return resp, err
}

// BaseURL returns the provider's configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Name returns the provider name, e.g. "gemini".
func (c *Client) Name() string {
	return c.serviceName
}

// HealthCheck reports the breaker state without calling the provider: nil
// while closed, a *BreakerError otherwise.
func (c *Client) HealthCheck(_ context.Context) error {
	if state := c.breaker.State(); state != gobreaker.StateClosed {
		return &BreakerError{Service: c.serviceName, State: state}
	}
	return nil
}

func isFailureStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError
}

// Drain reads and closes a response body so the connection can be reused.
func Drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// startSpan opens a client span named "<provider> <method> <path>" and
// injects W3C trace context into req's headers.
func (c *Client) startSpan(ctx context.Context, req *http.Request) (context.Context, trace.Span) {
	ctx, span := otel.GetTracerProvider().Tracer("httpclient").Start(ctx,
		fmt.Sprintf("%s %s %s", c.serviceName, req.Method, req.URL.Path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			telemetry.AttrHTTPMethod.String(req.Method),
			attribute.String("http.url", req.URL.Redacted()),
			telemetry.AttrPeerService.String(c.serviceName),
		),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return ctx, span
}

func endSpan(span trace.Span, resp *http.Response, err error) {
	if resp != nil {
		span.SetAttributes(telemetry.AttrHTTPStatus.Int(resp.StatusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// recordMetrics runs outside the breaker so rejected calls are counted too.
func (c *Client) recordMetrics(ctx context.Context, method string, start time.Time, resp *http.Response, err error) {
	if c.metrics == nil {
		return
	}

	statusCode := 0
	result := "error"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "circuit_open"
	case resp != nil:
		statusCode = resp.StatusCode
		if statusCode < http.StatusBadRequest {
			result = "success"
		}
	}

	attrs := metric.WithAttributes(
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPStatus.Int(statusCode),
		telemetry.AttrPeerService.String(c.serviceName),
		telemetry.AttrResult.String(result),
	)

	c.metrics.ClientRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	c.metrics.ClientRequestTotal.Add(ctx, 1, attrs)
}

// toUint32 clamps v into uint32; negative values become zero.
func toUint32(v int) uint32 {
	if v <= 0 {
		return 0
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
