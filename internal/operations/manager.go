package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Manager orchestrates operation execution
type Manager struct {
	registry *Registry
	tracer   *OperationTracer
}

// NewManager creates a new operation manager. A nil tracer disables
// instrumentation.
func NewManager(registry *Registry, tracer *OperationTracer) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if tracer == nil {
		tracer, _ = NewOperationTracer(nil)
	}

	return &Manager{
		registry: registry,
		tracer:   tracer,
	}
}

// RegisterStage registers a Step with the operation
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered stages
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs every registered step in order. The returned state holds the
// final table and the artifacts each step produced, also on failure.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationState, error) {
	if req.ID == "" {
		req.ID = fmt.Sprintf("operation-%d", time.Now().Unix())
	}

	state := NewOperationState(req.ID)
	for k, v := range req.Parameters {
		state.SetContext(k, v)
	}

	steps := m.registry.List()
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, req.ID, len(steps))
	defer span.End()

	m.logOperationStart(ctx, req.ID, len(steps))
	state.Start()

	err := m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	rows := 0
	if t := state.Table(); t != nil {
		rows = t.NumRows()
	}
	m.tracer.RecordOperationCompletion(ctx, span, state.GetStatus(), state.Duration(), rows, err)

	if err != nil {
		m.logOperationError(ctx, req.ID, err)
	}
	m.logOperationComplete(ctx, req.ID, state.Duration(), string(state.GetStatus()))

	return state, err
}

// executeSequential executes steps one by one, stopping at the first failure
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		slog.DebugContext(ctx, "executing_stage",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(steps)))

		if err := m.executeStage(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("Previous step %s failed", step.ID()))
			return err
		}
	}
	slog.DebugContext(ctx, "all_stages_completed",
		slog.String("operation_id", state.ID))
	return nil
}

// executeStage executes a single Step
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError(fmt.Sprintf("state for step %s not found", step.ID()), nil)
	}

	stageCtx, span := m.tracer.TraceStageExecution(ctx, state.ID, step.ID())
	defer span.End()

	if skipper, ok := step.(Skipper); ok {
		if reason := skipper.SkipReason(state); reason != "" {
			stepState.Skip(reason)
			m.logStageSkipped(stageCtx, state.ID, step.ID(), reason)
			m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), StepStatusSkipped, 0, nil)
			return nil
		}
	}

	if err := step.Validate(state); err != nil {
		opErr := NewValidationError(step.ID(), err.Error())
		stepState.Fail(opErr)
		m.logStageError(stageCtx, state.ID, step.ID(), opErr)
		m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), StepStatusFailed, 0, opErr)
		return opErr
	}

	m.logStageStart(stageCtx, state.ID, step.ID())
	stepState.Start()
	err := step.Execute(stageCtx, state)
	if err != nil {
		opErr := WrapError(err, step.ID(), "Step execution failed")
		stepState.Fail(opErr)
		m.logStageError(stageCtx, state.ID, step.ID(), opErr)
		m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), StepStatusFailed, stepState.Duration(), opErr)
		return opErr
	}

	stepState.Complete()
	m.logStageComplete(stageCtx, state.ID, step.ID(), stepState.Duration())
	m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), StepStatusCompleted, stepState.Duration(), nil)
	return nil
}

// skipRemaining marks steps that will not run as skipped
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}
