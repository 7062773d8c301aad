package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer and meter scope of the connector
const TracerName = "yellowcube"

// Span attribute keys shared by the connector
const (
	SpanAttrOperation  = "soap.operation"
	SpanAttrHTTPStatus = "http.response.status_code"
	SpanAttrFaultCode  = "soap.fault_code"
	SpanAttrOutcome    = "yellowcube.outcome"
	SpanAttrStatusType = "yellowcube.status_type"
	SpanAttrStatusCode = "yellowcube.status_code"
)

// SpanOption configures a span at start
type SpanOption func(*spanOptions)

type spanOptions struct {
	attributes []attribute.KeyValue
	kind       trace.SpanKind
}

// WithAttribute adds an attribute to the span
func WithAttribute(key string, value any) SpanOption {
	return func(opts *spanOptions) {
		opts.attributes = append(opts.attributes, toAttribute(key, value))
	}
}

// WithSpanKind sets the span kind
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(opts *spanOptions) {
		opts.kind = kind
	}
}

// StartSpan starts a span on the connector tracer. The caller ends it.
//
//	ctx, span := telemetry.StartSpan(ctx, "soap.InsertArticleMasterData")
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	options := &spanOptions{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(options)
	}

	startOpts := []trace.SpanStartOption{trace.WithSpanKind(options.kind)}
	if len(options.attributes) > 0 {
		startOpts = append(startOpts, trace.WithAttributes(options.attributes...))
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name, startOpts...)
}

// StartOperationSpan starts the span of one fulfillment operation, named
// "fulfillment.{operation}"
func StartOperationSpan(ctx context.Context, operation string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, "fulfillment."+operation, opts...)
}

// SetAttributes adds key/value pairs to span. Pairs without a string key
// are skipped.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, keyValues[i+1]))
	}
	span.SetAttributes(attrs...)
}

// RecordError records err on span and marks the span failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordOutcome annotates span with the classified provider reply. A reply
// that was not accepted also adds an event, so it stands out in trace views
// while the span itself stays successful.
func RecordOutcome(span trace.Span, outcome, statusType string, statusCode int) {
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.String(SpanAttrOutcome, outcome),
		attribute.String(SpanAttrStatusType, statusType),
		attribute.Int(SpanAttrStatusCode, statusCode),
	)
	if outcome == "not_accepted" {
		span.AddEvent("reply not accepted", trace.WithAttributes(
			attribute.String(SpanAttrStatusType, statusType),
			attribute.Int(SpanAttrStatusCode, statusCode),
		))
	}
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
