package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/yellowcube/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartOperationSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartOperationSpan(context.Background(), "send_order",
		telemetry.WithAttribute("order_number", "20001"),
		telemetry.WithAttribute("record_id", int64(42)),
		telemetry.WithAttribute("is_return", true),
	)
	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "fulfillment.send_order", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())

	v, ok := attrValue(spans[0].Attributes(), "order_number")
	require.True(t, ok)
	assert.Equal(t, "20001", v.AsString())
	v, ok = attrValue(spans[0].Attributes(), "record_id")
	require.True(t, ok)
	assert.Equal(t, int64(42), v.AsInt64())
	v, ok = attrValue(spans[0].Attributes(), "is_return")
	require.True(t, ok)
	assert.True(t, v.AsBool())
}

func TestStartSpan_ClientKind(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "soap.GetInventory",
		telemetry.WithSpanKind(trace.SpanKindClient))
	span.End()

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, trace.SpanKindClient, sr.Ended()[0].SpanKind())
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "failing")
	telemetry.RecordError(span, errors.New("boom"))
	telemetry.RecordError(span, nil)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
	assert.Len(t, ended[0].Events(), 1)
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "annotated")
	telemetry.SetAttributes(span, "rows", 3, 17, "ignored", "status", "S")
	span.End()

	ended := sr.Ended()[0]
	v, ok := attrValue(ended.Attributes(), "rows")
	require.True(t, ok)
	assert.Equal(t, int64(3), v.AsInt64())
	_, ok = attrValue(ended.Attributes(), "status")
	assert.True(t, ok)
}

func TestRecordOutcome(t *testing.T) {
	sr := setupTestTracer(t)

	_, accepted := telemetry.StartSpan(context.Background(), "accepted")
	telemetry.RecordOutcome(accepted, "accepted", "S", 100)
	accepted.End()

	_, rejected := telemetry.StartSpan(context.Background(), "rejected")
	telemetry.RecordOutcome(rejected, "not_accepted", "E", 101)
	rejected.End()

	ended := sr.Ended()
	require.Len(t, ended, 2)

	v, ok := attrValue(ended[0].Attributes(), telemetry.SpanAttrStatusCode)
	require.True(t, ok)
	assert.Equal(t, int64(100), v.AsInt64())
	assert.Empty(t, ended[0].Events())

	v, ok = attrValue(ended[1].Attributes(), telemetry.SpanAttrOutcome)
	require.True(t, ok)
	assert.Equal(t, "not_accepted", v.AsString())
	require.Len(t, ended[1].Events(), 1)
	assert.Equal(t, "reply not accepted", ended[1].Events()[0].Name)
	assert.NotEqual(t, codes.Error, ended[1].Status().Code)
}
