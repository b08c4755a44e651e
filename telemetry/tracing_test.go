package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingDisabledIsNoop(t *testing.T) {
	tr, err := NewTracing(context.Background(), TracingConfig{})
	require.NoError(t, err)

	_, span := tr.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.IsRecording())
	span.End()
	require.NoError(t, tr.Shutdown(context.Background()))
}

func TestTracingStdoutFlushesOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	tr, err := NewTracing(context.Background(), TracingConfig{
		Enabled:     true,
		ServiceName: "hyperroute-test",
		Writer:      &buf,
	})
	require.NoError(t, err)

	_, span := tr.Tracer("test").Start(context.Background(), "hyperroute.run")
	assert.True(t, span.IsRecording())
	span.End()
	require.NoError(t, tr.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "hyperroute.run")
	assert.Contains(t, buf.String(), "hyperroute-test")
}

func TestTracingUnknownExporter(t *testing.T) {
	_, err := NewTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "zipkin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zipkin")
}
