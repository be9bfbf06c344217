package operations

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Step is one transform of the pipeline. Execute reads the current table
// from the state and stores its result back.
type Step interface {
	ID() string
	Name() string

	// Execute performs the transform
	Execute(ctx context.Context, state *OperationState) error

	// Validate runs before Execute and rejects a state the step cannot
	// work on, such as a missing table
	Validate(state *OperationState) error
}

// Skipper is implemented by steps that can be switched off. A non-empty
// reason marks the step as skipped instead of running it.
type Skipper interface {
	SkipReason(state *OperationState) string
}

// StepStatus is the lifecycle position of a step within one run
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState records what happened to a step during a run
type StepState struct {
	mu        sync.RWMutex
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Status    StepStatus             `json:"status"`
	StartTime *time.Time             `json:"start_time,omitempty"`
	EndTime   *time.Time             `json:"end_time,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Error     error                  `json:"-"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewStepState returns a pending state for a step
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:       id,
		Name:     name,
		Status:   StepStatusPending,
		Metadata: map[string]interface{}{},
	}
}

// Start moves the step to active
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// finish moves the step to a terminal status
func (s *StepState) finish(status StepStatus, message string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = status
	if message != "" {
		s.Message = message
	}
	s.Error = err
}

// Complete moves the step to completed
func (s *StepState) Complete() {
	s.finish(StepStatusCompleted, "", nil)
}

// Fail moves the step to failed and keeps err as its message
func (s *StepState) Fail(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	s.finish(StepStatusFailed, msg, err)
}

// Skip moves the step to skipped
func (s *StepState) Skip(reason string) {
	s.finish(StepStatusSkipped, reason, nil)
}

// SetMetadata records a value describing what the step did
func (s *StepState) SetMetadata(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Metadata[key] = value
}

// GetStatus returns the current status
func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration is the time between Start and the terminal transition, or until
// now while the step is still active. Steps that never started report zero.
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.StartTime == nil:
		return 0
	case s.EndTime == nil:
		return time.Since(*s.StartTime)
	default:
		return s.EndTime.Sub(*s.StartTime)
	}
}

// BaseStage carries the ID and name every step needs. Embed it and
// implement Execute.
type BaseStage struct {
	id   string
	name string
}

// NewBaseStage returns a BaseStage for embedding
func NewBaseStage(id, name string) BaseStage {
	return BaseStage{id: id, name: name}
}

func (b *BaseStage) ID() string   { return b.id }
func (b *BaseStage) Name() string { return b.name }

// Validate requires a table from an earlier step. Steps that create the
// table override it.
func (b *BaseStage) Validate(state *OperationState) error {
	if state.Table() == nil {
		return fmt.Errorf("no table loaded before step %s", b.id)
	}
	return nil
}
