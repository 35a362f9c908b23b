package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestInitTracer_NoEndpointInstallsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "balance-reporter-test", "  ")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracer_WithEndpoint(t *testing.T) {
	// The exporter connects lazily, so no collector is needed to build the provider.
	shutdown, err := InitTracer(context.Background(), "balance-reporter-test", "localhost:4318")
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "sampled")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
	otel.SetTracerProvider(noop.NewTracerProvider())
}
