package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/wiring/di"
)

// GraphObserver is a di.Observer that traces and measures provider
// materializations. Nested dependencies become child spans of the
// provider that injects them.
type GraphObserver struct {
	tracer  trace.Tracer
	metrics *Metrics
}

var _ di.Observer = (*GraphObserver)(nil)

// NewGraphObserver creates the instruments on meter and returns an observer
// emitting spans with tracer.
func NewGraphObserver(tracer trace.Tracer, meter metric.Meter) (*GraphObserver, error) {
	m, err := NewMetrics(meter)
	if err != nil {
		return nil, err
	}
	return &GraphObserver{tracer: tracer, metrics: m}, nil
}

type provideStartKey struct{}

// ProviderStarted opens a "di.provide" span for spec.
func (o *GraphObserver) ProviderStarted(ctx context.Context, spec di.Specification) context.Context {
	ctx, _ = o.tracer.Start(ctx, SpanProvide, trace.WithAttributes(
		attribute.String(AttrSpecification, spec.String()),
	))
	o.metrics.RecordProvideStart(ctx)
	return context.WithValue(ctx, provideStartKey{}, time.Now())
}

// ProviderFinished closes the span opened by ProviderStarted.
func (o *GraphObserver) ProviderFinished(ctx context.Context, spec di.Specification, cached bool, err error) {
	var elapsed time.Duration
	if start, ok := ctx.Value(provideStartKey{}).(time.Time); ok {
		elapsed = time.Since(start)
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Bool(AttrCached, cached))
	status := StatusOK
	if err != nil {
		status = StatusError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorCode, string(di.ToAppError(err).Code)))
	}
	span.End()

	o.metrics.RecordProvideEnd(ctx, spec.String(), status, cached, elapsed)
}

// Validate runs g.Validate inside a "di.validate" span and counts the outcome.
func (o *GraphObserver) Validate(ctx context.Context, g *di.Graph) error {
	ctx, span := o.tracer.Start(ctx, SpanValidate, trace.WithAttributes(
		attribute.String(AttrGraphID, g.ID()),
		attribute.Int("di.providers", g.Len()),
	))
	defer span.End()

	err := g.Validate()
	code := ""
	if err != nil {
		code = string(di.ToAppError(err).Code)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorCode, code))
	}
	o.metrics.RecordValidation(ctx, code)
	return err
}

// Warm runs g.Warm inside a "di.warm" span. Provider spans are its children.
func (o *GraphObserver) Warm(ctx context.Context, g *di.Graph) error {
	ctx, span := o.tracer.Start(ctx, SpanWarm, trace.WithAttributes(
		attribute.String(AttrGraphID, g.ID()),
	))
	defer span.End()

	err := g.Warm(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
