package rbacmiddleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()

	spanCtx, span := NoopTracer{}.StartSpan(ctx, "check")
	assert.Equal(t, ctx, spanCtx)

	// Must not panic.
	span.SetTag("outcome", "granted")
	span.Finish()
}

func TestOpenTelemetryTracer(t *testing.T) {
	tracer := NewOpenTelemetryTracer(noop.NewTracerProvider().Tracer("test"))

	ctx, span := tracer.StartSpan(context.Background(), "check")
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	span.SetTag("required_role", "ADMIN")
	span.SetTag("attempts", 1)
	span.Finish()
}
