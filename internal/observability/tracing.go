package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan starts a new span from context
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// StartServiceSpan starts a span for service operations
func StartServiceSpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("service.component", service),
			attribute.String("service.operation", operation),
		),
	)
}

// RecordError records an error on the span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSuccess marks the span as successful
func SetSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// SyncMetrics holds attendance sync metrics
type SyncMetrics struct {
	syncPasses         metric.Int64Counter
	eventsCreated      metric.Int64Counter
	duplicatesSkipped  metric.Int64Counter
	connectionFailures metric.Int64Counter
}

// NewSyncMetrics creates sync metrics instruments
func NewSyncMetrics() (*SyncMetrics, error) {
	meter := otel.Meter(instrumentationName)

	syncPasses, err := meter.Int64Counter(
		"attendsync.sync.passes",
		metric.WithDescription("Total number of device sync passes"),
		metric.WithUnit("{passes}"),
	)
	if err != nil {
		return nil, err
	}

	eventsCreated, err := meter.Int64Counter(
		"attendsync.events.created",
		metric.WithDescription("Total number of attendance events stored"),
		metric.WithUnit("{events}"),
	)
	if err != nil {
		return nil, err
	}

	duplicatesSkipped, err := meter.Int64Counter(
		"attendsync.events.duplicates",
		metric.WithDescription("Total number of punches skipped as already recorded"),
		metric.WithUnit("{events}"),
	)
	if err != nil {
		return nil, err
	}

	connectionFailures, err := meter.Int64Counter(
		"attendsync.device.connection_failures",
		metric.WithDescription("Total number of failed device connection attempts"),
		metric.WithUnit("{failures}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncPasses:         syncPasses,
		eventsCreated:      eventsCreated,
		duplicatesSkipped:  duplicatesSkipped,
		connectionFailures: connectionFailures,
	}, nil
}

// RecordSyncPass records the outcome of one device sync pass
func (m *SyncMetrics) RecordSyncPass(ctx context.Context, deviceID string, eventsCreated, duplicates int, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("device_id", deviceID),
		attribute.Bool("success", success),
	}
	m.syncPasses.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.eventsCreated.Add(ctx, int64(eventsCreated), metric.WithAttributes(attrs...))
	m.duplicatesSkipped.Add(ctx, int64(duplicates), metric.WithAttributes(attrs...))
}

// RecordConnectionFailure records a failed device connection attempt
func (m *SyncMetrics) RecordConnectionFailure(ctx context.Context, deviceID string) {
	m.connectionFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("device_id", deviceID),
	))
}
