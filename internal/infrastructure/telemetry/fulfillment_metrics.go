package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is created without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Metric attribute keys
var (
	AttrOperation = attribute.Key("operation")
	AttrOutcome   = attribute.Key("outcome")
	AttrReason    = attribute.Key("reason")
)

// operationDurationBuckets span a fast acknowledgement up to a SOAP call
// hitting the client timeout (seconds)
var operationDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// FulfillmentMetrics counts provider submissions by operation and outcome.
// A nil *FulfillmentMetrics records nothing.
type FulfillmentMetrics struct {
	submissions metric.Int64Counter
	failures    metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewFulfillmentMetrics creates the fulfillment instruments on meter.
func NewFulfillmentMetrics(meter metric.Meter) (*FulfillmentMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	submissions, err := meter.Int64Counter("yellowcube_submissions_total",
		metric.WithDescription("Provider replies received, by operation and outcome"),
		metric.WithUnit("{submissions}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create submissions counter: %w", err)
	}

	failures, err := meter.Int64Counter("yellowcube_failures_total",
		metric.WithDescription("Operations that failed before a reply was classified"),
		metric.WithUnit("{failures}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}

	duration, err := meter.Float64Histogram("yellowcube_operation_duration_seconds",
		metric.WithDescription("Duration of fulfillment operations including the SOAP round trip"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(operationDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &FulfillmentMetrics{submissions: submissions, failures: failures, duration: duration}, nil
}

// RecordSubmission records a classified reply.
func (fm *FulfillmentMetrics) RecordSubmission(ctx context.Context, operation, outcome string, d time.Duration) {
	if fm == nil {
		return
	}
	fm.submissions.Add(ctx, 1, metric.WithAttributes(AttrOperation.String(operation), AttrOutcome.String(outcome)))
	fm.duration.Record(ctx, d.Seconds(), metric.WithAttributes(AttrOperation.String(operation)))
}

// RecordFailure records a failed operation. reason is the error log tag or
// a short cause such as "validation".
func (fm *FulfillmentMetrics) RecordFailure(ctx context.Context, operation, reason string) {
	if fm == nil {
		return
	}
	fm.failures.Add(ctx, 1, metric.WithAttributes(AttrOperation.String(operation), AttrReason.String(reason)))
}
