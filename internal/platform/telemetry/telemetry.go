// Package telemetry wires OpenTelemetry for the assistant. Setup installs
// the tracer and meter providers (stdout for development, OTLP/HTTP in
// production) and registers the service's instruments: HTTP server and client
// request metrics plus pipeline counters for runs, detected actions,
// recoveries, fallbacks and transport retries.
//
//	providers, err := telemetry.Setup(ctx, cfg.Telemetry)
//	defer providers.Shutdown(ctx)
//	providers.Metrics.ActionTotal.Add(ctx, 1,
//		metric.WithAttributes(telemetry.AttrActionKind.String("ADD_MEAL")))
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// Supported exporter names.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Attribute keys for metric labels and span attributes.
var (
	AttrHTTPMethod  = attribute.Key("http.method")
	AttrHTTPStatus  = attribute.Key("http.status_code")
	AttrHTTPRoute   = attribute.Key("http.route")
	AttrActorID     = attribute.Key("actor.id")
	AttrPeerService = attribute.Key("peer.service")
	AttrResult      = attribute.Key("result")
	AttrActionKind  = attribute.Key("action.kind")
	AttrEntityKind  = attribute.Key("entity.kind")
	AttrErrorKind   = attribute.Key("error.kind")
	AttrOperation   = attribute.Key("operation")
)

// Metrics holds pre-registered OpenTelemetry metric instruments.
type Metrics struct {
	ServerRequestDuration metric.Float64Histogram
	ServerRequestTotal    metric.Int64Counter
	ClientRequestDuration metric.Float64Histogram
	ClientRequestTotal    metric.Int64Counter

	// Pipeline instruments. ActionTotal counts detections by kind and
	// result; RetryTotal counts transport retries by error kind.
	PipelineRunTotal metric.Int64Counter
	ActionTotal      metric.Int64Counter
	RecoveryTotal    metric.Int64Counter
	FallbackTotal    metric.Int64Counter
	RetryTotal       metric.Int64Counter
}

// InitTracer creates and registers a global TracerProvider.
//
// The exporter parameter selects the span exporter: "otlp" uses OTLP/HTTP
// with the given endpoint, which must be set; "stdout" uses a pretty-printed
// stdout exporter for development. Other values are rejected.
//
// The returned TracerProvider must be shut down when the application exits.
func InitTracer(ctx context.Context, serviceName, exporter, endpoint string) (*sdktrace.TracerProvider, error) {
	res, err := newResource(serviceName)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	spanExporter, err := newSpanExporter(ctx, exporter, endpoint)
	if err != nil {
		return nil, fmt.Errorf("creating span exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

// InitMeter creates and registers a global MeterProvider.
//
// The exporter parameter selects the metric exporter as for InitTracer.
//
// The returned MeterProvider must be shut down when the application exits.
func InitMeter(ctx context.Context, serviceName, exporter, endpoint string) (*sdkmetric.MeterProvider, error) {
	res, err := newResource(serviceName)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	metricExporter, err := newMetricExporter(ctx, exporter, endpoint)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

// NewMetrics creates and registers all metric instruments using the given
// MeterProvider, scoped to name. Pass a noop provider when telemetry is
// disabled.
func NewMetrics(mp metric.MeterProvider, name string) (*Metrics, error) {
	meter := mp.Meter(name)

	m := &Metrics{}

	histograms := []struct {
		target      *metric.Float64Histogram
		name        string
		description string
	}{
		{&m.ServerRequestDuration, "http.server.request.duration", "Duration of incoming HTTP requests"},
		{&m.ClientRequestDuration, "http.client.request.duration", "Duration of model provider requests"},
	}
	for _, h := range histograms {
		hist, err := meter.Float64Histogram(h.name, metric.WithDescription(h.description), metric.WithUnit("s"))
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", h.name, err)
		}
		*h.target = hist
	}

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&m.ServerRequestTotal, "http.server.request.total", "Total number of incoming HTTP requests", "{request}"},
		{&m.ClientRequestTotal, "http.client.request.total", "Total number of model provider requests", "{request}"},
		{&m.PipelineRunTotal, "assistant.pipeline.run.total", "Total number of pipeline runs by operation and result", "{run}"},
		{&m.ActionTotal, "assistant.action.total", "Actions detected in model output by kind and result", "{action}"},
		{&m.RecoveryTotal, "assistant.recovery.total", "Payloads that needed field recovery", "{payload}"},
		{&m.FallbackTotal, "assistant.fallback.total", "Responses replaced by a fallback", "{response}"},
		{&m.RetryTotal, "assistant.transport.retry.total", "Transport retries by error kind", "{retry}"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", c.name, err)
		}
		*c.target = counter
	}

	return m, nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newSpanExporter(ctx context.Context, exporter, endpoint string) (sdktrace.SpanExporter, error) {
	switch exporter {
	case ExporterOTLP:
		if endpoint == "" {
			return nil, errEmptyEndpoint
		}
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(hostPort(endpoint))}
		if !isHTTPS(endpoint) {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unsupported exporter %q", exporter)
	}
}

func newMetricExporter(ctx context.Context, exporter, endpoint string) (sdkmetric.Exporter, error) {
	switch exporter {
	case ExporterOTLP:
		if endpoint == "" {
			return nil, errEmptyEndpoint
		}
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(hostPort(endpoint))}
		if !isHTTPS(endpoint) {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	case ExporterStdout:
		return stdoutmetric.New()
	default:
		return nil, fmt.Errorf("unsupported exporter %q", exporter)
	}
}

var errEmptyEndpoint = errors.New("otlp exporter requires an endpoint")

// hostPort extracts the host:port from a URL string
// (e.g., "http://otel-collector:4318" -> "otel-collector:4318").
func hostPort(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}

// isHTTPS returns true if the endpoint URL uses the https scheme.
func isHTTPS(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	return u.Scheme == "https"
}
