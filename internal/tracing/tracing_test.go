package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestStartSpan(t *testing.T) {
	t.Run("should pass the context through when no tracer is installed", func(t *testing.T) {
		SetTracer(nil)
		ctx := context.Background()
		got, span := StartSpan(ctx, "tracing.test")
		assert.Equal(t, ctx, got)
		require.NotNil(t, span)
		span.End()
	})

	t.Run("should start a span once a tracer is installed", func(t *testing.T) {
		SetTracer(noop.NewTracerProvider().Tracer("test"))
		defer SetTracer(nil)

		_, span := StartSpan(context.Background(), "tracing.test")
		require.NotNil(t, span)
		span.End()
	})
}

func TestGetTraceID(t *testing.T) {
	t.Run("should return empty without a tracer", func(t *testing.T) {
		SetTracer(nil)
		assert.Empty(t, GetTraceID(context.Background()))
	})

	t.Run("should return empty when the context carries no span", func(t *testing.T) {
		SetTracer(noop.NewTracerProvider().Tracer("test"))
		defer SetTracer(nil)

		assert.Empty(t, GetTraceID(context.Background()))
	})

	t.Run("should return the trace ID of the active span", func(t *testing.T) {
		SetTracer(noop.NewTracerProvider().Tracer("test"))
		defer SetTracer(nil)

		traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		require.NoError(t, err)
		spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
		require.NoError(t, err)

		ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: traceID,
			SpanID:  spanID,
		}))
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
	})
}
