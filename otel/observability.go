// Package otel implements dux.Observability with OpenTelemetry metrics and
// traces. It is optional: the core package has no OpenTelemetry dependency
// at runtime unless this implementation is attached via WithObservability.
package otel

import (
	"context"
	"time"

	"github.com/jilio/dux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/jilio/dux"

// Observability implements dux.Observability using OpenTelemetry.
type Observability struct {
	tracer trace.Tracer
	meter  metric.Meter

	dispatchCounter  metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	dispatchErrors   metric.Int64Counter
	subscriberPanics metric.Int64Counter
	queueDepth       metric.Int64Gauge
}

// Option configures the Observability.
type Option func(*Observability)

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *Observability) {
		o.tracer = provider.Tracer(instrumentationName)
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *Observability) {
		o.meter = provider.Meter(instrumentationName)
	}
}

// New creates an OpenTelemetry observability implementation. Without
// options it uses the global tracer and meter providers.
func New(opts ...Option) (*Observability, error) {
	obs := &Observability{
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}

	for _, opt := range opts {
		opt(obs)
	}

	var err error

	obs.dispatchCounter, err = obs.meter.Int64Counter(
		"dux.dispatch.count",
		metric.WithDescription("Number of events dispatched"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	obs.dispatchDuration, err = obs.meter.Float64Histogram(
		"dux.dispatch.duration",
		metric.WithDescription("Dispatch duration including subscriber notification"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	obs.dispatchErrors, err = obs.meter.Int64Counter(
		"dux.dispatch.errors",
		metric.WithDescription("Number of dispatches that returned an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	obs.subscriberPanics, err = obs.meter.Int64Counter(
		"dux.subscriber.panics",
		metric.WithDescription("Number of subscriber callbacks that panicked"),
		metric.WithUnit("{panic}"),
	)
	if err != nil {
		return nil, err
	}

	obs.queueDepth, err = obs.meter.Int64Gauge(
		"dux.dispatch.queue_depth",
		metric.WithDescription("Pending dispatches queued behind the in-flight one"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return obs, nil
}

// DispatchStart opens a span for the dispatch and counts it. The returned
// context is handed back to DispatchEnd by the store.
func (o *Observability) DispatchStart(eventType string) any {
	ctx, _ := o.tracer.Start(context.Background(), "dux.dispatch: "+eventType,
		trace.WithAttributes(
			attribute.String("event.type", eventType),
		),
	)

	o.dispatchCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("event.type", eventType),
		),
	)

	return ctx
}

// DispatchEnd records the dispatch outcome and closes the span.
func (o *Observability) DispatchEnd(obsCtx any, eventType string, err error, duration time.Duration) {
	ctx, ok := obsCtx.(context.Context)
	if !ok {
		ctx = context.Background()
	}
	span := trace.SpanFromContext(ctx)

	attrs := metric.WithAttributes(attribute.String("event.type", eventType))
	o.dispatchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		o.dispatchErrors.Add(ctx, 1, attrs)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

// SubscriberPanic counts a panicking subscriber callback.
func (o *Observability) SubscriberPanic(eventType string, panicValue any) {
	o.subscriberPanics.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("event.type", eventType),
		),
	)
}

// QueueDepth records the pending-dispatch queue length.
func (o *Observability) QueueDepth(depth int) {
	o.queueDepth.Record(context.Background(), int64(depth))
}

// Ensure Observability implements dux.Observability
var _ dux.Observability = (*Observability)(nil)
