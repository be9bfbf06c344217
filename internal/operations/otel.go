package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"loanprep/internal/infrastructure"
)

const (
	TracerName = "loanprep.operations"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer from the initialized providers. With
// nil providers spans go to the global no-op tracer and no metrics are
// recorded.
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	if providers == nil {
		return &OperationTracer{tracer: otel.Tracer(TracerName)}, nil
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &OperationTracer{
		tracer:  providers.Tracer,
		metrics: metrics,
	}, nil
}

// TraceOperationExecution creates a span for the entire run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string, stepCount int) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("pipeline.run_id", operationID),
			attribute.Int("pipeline.step_count", stepCount),
		),
	)
}

// TraceStageExecution creates a span for one step
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID, stageID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "pipeline.step."+stageID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("pipeline.run_id", operationID),
			attribute.String("step.id", stageID),
		),
	)
}

// RecordStageCompletion closes out a step span and records its metrics
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stageID string, status StepStatus, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.String("step.status", string(status)),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)

	switch {
	case err != nil:
		infrastructure.RecordError(ctx, err,
			trace.WithAttributes(
				attribute.String("step.id", stageID),
				attribute.String("error.type", string(GetErrorType(err))),
			),
		)
	case status == StepStatusSkipped:
		span.SetStatus(codes.Ok, "step skipped")
	default:
		span.SetStatus(codes.Ok, "step completed")
	}

	if pt.metrics == nil {
		return
	}
	pt.metrics.StepExecutions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("step", stageID),
			attribute.String("status", string(status)),
		),
	)
	if status != StepStatusSkipped {
		pt.metrics.StepDuration.Record(ctx, duration.Seconds(),
			metric.WithAttributes(attribute.String("step", stageID)),
		)
	}
}

// RecordOperationCompletion closes out the run span and records run metrics
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, status OperationStatusValue, duration time.Duration, rows int, err error) {
	span.SetAttributes(
		attribute.String("pipeline.status", string(status)),
		attribute.Float64("pipeline.duration_seconds", duration.Seconds()),
		attribute.Int("pipeline.rows", rows),
	)

	if err != nil {
		infrastructure.RecordError(ctx, err,
			trace.WithAttributes(attribute.String("error.type", string(GetErrorType(err)))),
		)
	} else {
		infrastructure.AddSpanEvent(ctx, "pipeline.completed", attribute.Int("rows", rows))
		span.SetStatus(codes.Ok, "pipeline completed")
	}

	if pt.metrics == nil {
		return
	}
	pt.metrics.RunsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", string(status))),
	)
	if err == nil && rows > 0 {
		pt.metrics.RowsProcessed.Add(ctx, int64(rows))
	}
}
