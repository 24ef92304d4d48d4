package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/BradenHooton/realty/internal/config"
)

func TestNew_DisabledUsesLocalProvider(t *testing.T) {
	tel, err := New(context.Background(), config.TelemetryConfig{Enabled: false}, "test")
	require.NoError(t, err)
	require.NotNil(t, tel.Tracer)

	ctx, span := tel.Tracer.Start(context.Background(), "op")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	span.End()

	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestEndSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := tp.Tracer(TracerName).Start(context.Background(), "failing")
	EndSpan(span, errors.New("boom"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestTraceIDFromContext_Empty(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
