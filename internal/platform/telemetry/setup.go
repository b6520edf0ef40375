package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/config"
)

// Providers owns the SDK providers created by Setup. Metrics is never nil:
// with telemetry disabled its instruments are no-ops.
type Providers struct {
	Metrics *Metrics

	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider
}

// Setup installs the global tracer and meter providers described by cfg and
// registers the service's instruments. When cfg is disabled nothing global is
// touched.
func Setup(ctx context.Context, cfg config.TelemetryConfig) (*Providers, error) {
	if !cfg.Enabled {
		metrics, err := NewMetrics(noop.NewMeterProvider(), cfg.ServiceName)
		if err != nil {
			return nil, err
		}
		return &Providers{Metrics: metrics}, nil
	}

	p := &Providers{}

	var err error
	if p.tracer, err = InitTracer(ctx, cfg.ServiceName, cfg.Exporter, cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	if p.meter, err = InitMeter(ctx, cfg.ServiceName, cfg.Exporter, cfg.Endpoint); err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}
	if p.Metrics, err = NewMetrics(p.meter, cfg.ServiceName); err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}
	return p, nil
}

// Shutdown flushes and stops whichever providers Setup created.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.tracer != nil {
		if err := p.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if p.meter != nil {
		if err := p.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
