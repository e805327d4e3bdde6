package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/wiring/logger"
)

// MeterConfig configures the OpenTelemetry meter.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Insecure       bool
	// Interval is the export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) *MeterConfig {
	return &MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "0.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global MeterProvider exporting to cfg.Endpoint.
// The caller shuts it down on exit.
func InitMeter(ctx context.Context, cfg *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric names.
const (
	MetricProvideTotal    = "di.provide.total"
	MetricProvideDuration = "di.provide.duration"
	MetricProvideActive   = "di.provide.active"
	MetricValidationTotal = "di.validation.total"
)

// Metrics holds the instruments recorded for a graph.
type Metrics struct {
	provideTotal    metric.Int64Counter
	provideDuration metric.Float64Histogram
	provideActive   metric.Int64UpDownCounter
	validationTotal metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	provideTotal, err := meter.Int64Counter(MetricProvideTotal,
		metric.WithDescription("Provider materializations by specification, cache outcome and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricProvideTotal, err)
	}

	provideDuration, err := meter.Float64Histogram(MetricProvideDuration,
		metric.WithDescription("Duration of provider materializations, including dependencies"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricProvideDuration, err)
	}

	provideActive, err := meter.Int64UpDownCounter(MetricProvideActive,
		metric.WithDescription("Provider materializations in progress"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricProvideActive, err)
	}

	validationTotal, err := meter.Int64Counter(MetricValidationTotal,
		metric.WithDescription("Graph validations by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricValidationTotal, err)
	}

	return &Metrics{
		provideTotal:    provideTotal,
		provideDuration: provideDuration,
		provideActive:   provideActive,
		validationTotal: validationTotal,
	}, nil
}

// RecordProvideStart increments the in-progress count.
func (m *Metrics) RecordProvideStart(ctx context.Context) {
	m.provideActive.Add(ctx, 1)
}

// RecordProvideEnd decrements the in-progress count and records the outcome.
func (m *Metrics) RecordProvideEnd(ctx context.Context, spec, status string, cached bool, duration time.Duration) {
	m.provideActive.Add(ctx, -1)
	m.provideTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrSpecification, spec),
		attribute.Bool(AttrCached, cached),
		attribute.String(AttrStatus, status),
	))
	m.provideDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrSpecification, spec),
	))
}

// RecordValidation counts a validation run; code is empty on success.
func (m *Metrics) RecordValidation(ctx context.Context, code string) {
	status := StatusOK
	if code != "" {
		status = StatusError
	}
	m.validationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStatus, status),
		attribute.String(AttrErrorCode, code),
	))
}

// Status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)
