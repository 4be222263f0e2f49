package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrier(t *testing.T) {
	c := HeaderCarrier{{Key: "event_type", Value: []byte("review.submitted")}}

	assert.Equal(t, "review.submitted", c.Get("event_type"))
	assert.Empty(t, c.Get("traceparent"))

	c.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	c.Set("event_type", "review.deleted")

	assert.Equal(t, []string{"event_type", "traceparent"}, c.Keys())
	assert.Equal(t, "review.deleted", c.Get("event_type"))
	assert.Len(t, c, 2)
}

func TestHeaderCarrier_Empty(t *testing.T) {
	var c HeaderCarrier
	assert.Empty(t, c.Keys())
	assert.Empty(t, c.Get("anything"))
}

func TestInjectTraceContext_RoundTrip(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "submit review")
	defer span.End()

	msg := kafka.Message{Headers: []kafka.Header{{Key: "source", Value: []byte("studyspots")}}}
	InjectTraceContext(ctx, &msg)

	require.Len(t, msg.Headers, 2)
	carrier := HeaderCarrier(msg.Headers)
	extracted := propagation.TraceContext{}.Extract(context.Background(), &carrier)
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(extracted).TraceID())
}
