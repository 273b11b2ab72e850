// Package otel provides OpenTelemetry integration for adapter dispatches.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	researchbridge "github.com/petal-labs/researchbridge"
)

// DispatchObserver records dispatch signals into OpenTelemetry.
type DispatchObserver struct {
	tracer trace.Tracer

	dispatches metric.Int64Counter
	failures   metric.Int64Counter
	latency    metric.Float64Histogram
}

// NewDispatchObserver creates a dispatch observer bound to the provided
// meter and tracer.
func NewDispatchObserver(meter metric.Meter, tracer trace.Tracer) (*DispatchObserver, error) {
	dispatches, err := meter.Int64Counter(
		"researchbridge.dispatch.invocations",
		metric.WithDescription("Number of tool dispatches"),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter(
		"researchbridge.dispatch.failures",
		metric.WithDescription("Number of tool dispatches resolved as error envelopes"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"researchbridge.dispatch.latency",
		metric.WithDescription("Dispatch latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &DispatchObserver{
		tracer:     tracer,
		dispatches: dispatches,
		failures:   failures,
		latency:    latency,
	}, nil
}

// ObserveDispatch records one dispatch result.
func (o *DispatchObserver) ObserveDispatch(observation researchbridge.DispatchObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("op", string(observation.Op)),
		attribute.Bool("success", observation.Success),
	}
	if observation.ErrorCode != "" {
		attrs = append(attrs, attribute.String("error_code", observation.ErrorCode))
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.dispatches.Add(ctx, 1, options)
	if !observation.Success {
		o.failures.Add(ctx, 1, options)
	}
	o.latency.Record(ctx, observation.Elapsed.Seconds(), options)

	if o.tracer == nil {
		return
	}
	spanAttrs := append(attrs, attribute.String("request_id", observation.RequestID))
	_, span := o.tracer.Start(ctx, "adapter.dispatch", trace.WithAttributes(spanAttrs...))
	if !observation.Success {
		span.SetStatus(codes.Error, observation.ErrorCode)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

var _ researchbridge.Observer = (*DispatchObserver)(nil)
