package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// restoreGlobals puts the global tracer provider back after the test.
func restoreGlobals(t *testing.T) {
	t.Helper()
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
}

func TestInitDisabled(t *testing.T) {
	restoreGlobals(t)
	before := otel.GetTracerProvider()

	shutdown, err := Init(context.Background(), DefaultConfig("studyspots"))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider(), "disabled tracing must not replace the global provider")
}

func TestInitEnabled(t *testing.T) {
	for _, rate := range []float64{0, 0.5, 1} {
		t.Run("", func(t *testing.T) {
			restoreGlobals(t)
			cfg := DefaultConfig("studyspots")
			cfg.Enabled = true
			cfg.Environment = "test"
			// Export is batched and asynchronous, so an unroutable collector
			// does not fail initialization.
			cfg.OTLPEndpoint = "127.0.0.1:0"
			cfg.SampleRate = rate

			shutdown, err := Init(context.Background(), cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = shutdown(context.Background()) })

			assert.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider())
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("studyspots")
	assert.Equal(t, "studyspots", cfg.ServiceName)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1.0, cfg.SampleRate)
	assert.Equal(t, "localhost:4318", cfg.OTLPEndpoint)
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		root string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}

	for _, tc := range tests {
		desc := Sampler(tc.rate).Description()
		assert.Contains(t, desc, "ParentBased{root:"+tc.root, "rate %v", tc.rate)
	}
}

func TestStartSpanRecordsError(t *testing.T) {
	restoreGlobals(t)
	exporter := tracetest.NewInMemoryExporter()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))

	_, span := StartSpan(context.Background(), "studyspots/service", "ReviewService.SubmitReview",
		attribute.String("spot_key", "gerstein-1200"),
	)
	RecordError(span, nil)
	RecordError(span, errors.New("storage unavailable"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "ReviewService.SubmitReview", got.Name)
	assert.Equal(t, codes.Error, got.Status.Code)
	assert.Equal(t, "storage unavailable", got.Status.Description)
	assert.Len(t, got.Events, 1, "only the non-nil error is recorded")
	assert.Contains(t, got.Attributes, attribute.String("spot_key", "gerstein-1200"))
}
