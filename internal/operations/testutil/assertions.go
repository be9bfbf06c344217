package testutil

import (
	"testing"

	"loanprep/internal/operations"
)

// AssertStepStatus verifies a step has the expected status
func AssertStepStatus(t *testing.T, step *operations.StepState, expected operations.StepStatus) {
	t.Helper()
	if step == nil {
		t.Fatal("step state is nil")
	}
	if got := step.GetStatus(); got != expected {
		t.Errorf("step %s status = %v, want %v", step.ID, got, expected)
	}
}

// AssertOperationStatus verifies an operation has the expected status
func AssertOperationStatus(t *testing.T, p *operations.OperationState, expected operations.OperationStatusValue) {
	t.Helper()
	if p == nil {
		t.Fatal("operation state is nil")
	}
	if got := p.GetStatus(); got != expected {
		t.Errorf("operation status = %v, want %v", got, expected)
	}
}

// AssertStageCompleted verifies a step completed successfully
func AssertStageCompleted(t *testing.T, p *operations.OperationState, stageID string) {
	t.Helper()
	step := p.GetStage(stageID)
	if step == nil {
		t.Fatalf("step %s not found", stageID)
	}
	AssertStepStatus(t, step, operations.StepStatusCompleted)
}

// AssertStageFailed verifies a step failed
func AssertStageFailed(t *testing.T, p *operations.OperationState, stageID string) {
	t.Helper()
	step := p.GetStage(stageID)
	if step == nil {
		t.Fatalf("step %s not found", stageID)
	}
	AssertStepStatus(t, step, operations.StepStatusFailed)
	if step.Error == nil {
		t.Errorf("step %s has no error", stageID)
	}
}

// AssertStageSkipped verifies a step was skipped
func AssertStageSkipped(t *testing.T, p *operations.OperationState, stageID string) {
	t.Helper()
	step := p.GetStage(stageID)
	if step == nil {
		t.Fatalf("step %s not found", stageID)
	}
	AssertStepStatus(t, step, operations.StepStatusSkipped)
}
