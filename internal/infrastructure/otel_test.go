package infrastructure

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"loanprep/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{
		ServiceName:    "loanprep-test",
		TraceExporter:  "none",
		MetricExporter: "none",
	}, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.Registry)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)

	// metrics file is skipped without a registry
	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, providers.WriteMetricsFile(path))
	assert.NoFileExists(t, path)

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TelemetryConfig
	}{
		{name: "trace", cfg: config.TelemetryConfig{TraceExporter: "jaeger", MetricExporter: "none"}},
		{name: "metric", cfg: config.TelemetryConfig{TraceExporter: "none", MetricExporter: "statsd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InitializeOTel(tt.cfg, discardLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unsupported")
		})
	}
}

func TestInitializeOTel_StdoutTraces(t *testing.T) {
	buf := captureStdout(t)

	providers, err := InitializeOTel(config.TelemetryConfig{
		ServiceName:    "loanprep-test",
		TraceExporter:  "stdout",
		MetricExporter: "none",
		SampleRatio:    1.0,
	}, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "pipeline.step.load")
	AddSpanEvent(ctx, "rows_loaded", attribute.Int("rows", 3))
	RecordError(ctx, assert.AnError)
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, providers.Shutdown(ctx))

	out := buf.String()
	assert.Contains(t, out, "pipeline.step.load")
	assert.Contains(t, out, "rows_loaded")
	assert.Contains(t, out, "loanprep-test")
}

func TestPipelineMetrics_WriteMetricsFile(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{
		ServiceName:    "loanprep-test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
	}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())
	require.NotNil(t, providers.Registry)

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	stepAttrs := metric.WithAttributes(
		attribute.String("step", "impute"),
		attribute.String("status", "completed"),
	)
	metrics.StepExecutions.Add(ctx, 1, stepAttrs)
	metrics.StepDuration.Record(ctx, 0.25, metric.WithAttributes(attribute.String("step", "impute")))
	metrics.RowsProcessed.Add(ctx, 614)
	metrics.RunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "success")))

	path := filepath.Join(t.TempDir(), "textfile", "loanprep.prom")
	require.NoError(t, providers.WriteMetricsFile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "pipeline_step_executions_total")
	assert.Contains(t, text, `step="impute"`)
	assert.Contains(t, text, "pipeline_step_duration_seconds")
	assert.Contains(t, text, "pipeline_rows_processed_total")
	assert.Contains(t, text, "pipeline_runs_total")
}

func TestSpanHelpers_NoopWithoutSpan(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordError(ctx, assert.AnError)
		AddSpanEvent(ctx, "nothing")
	})
}
