package operations

import (
	"sync"
	"time"

	"loanprep/internal/table"
)

// OperationStatusValue is the outcome of a whole run
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// OperationState represents the complete state of one pipeline run. The
// current table is handed from step to step through it.
type OperationState struct {
	mu sync.RWMutex

	ID        string               `json:"id"`
	Status    OperationStatusValue `json:"status"`
	StartTime time.Time            `json:"start_time"`
	EndTime   *time.Time           `json:"end_time,omitempty"`

	// Step states, and the order they were registered in
	Steps map[string]*StepState `json:"steps"`
	order []string

	// artifacts produced by steps, keyed by the ContextKey constants
	Context map[string]interface{} `json:"context"`

	Error error `json:"-"`

	table *table.Table
}

// NewOperationState returns a pending run with no steps and no table
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		Context:   make(map[string]interface{}),
	}
}

// Start moves the run to running and resets its start time
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// end moves the run to a terminal status
func (p *OperationState) end(status OperationStatusValue, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = status
	p.Error = err
}

// Complete ends the run successfully
func (p *OperationState) Complete() { p.end(OperationStatusCompleted, nil) }

// Fail ends the run with the error of the failing step
func (p *OperationState) Fail(err error) { p.end(OperationStatusFailed, err) }

// Cancel ends the run because its context was cancelled
func (p *OperationState) Cancel(err error) { p.end(OperationStatusCancelled, err) }

// GetStatus returns the current operation status
func (p *OperationState) GetStatus() OperationStatusValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStage returns the state of one step, nil if unknown
func (p *OperationState) GetStage(stageID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stageID]
}

// SetStage stores a step state. New IDs are appended to the step order.
func (p *OperationState) SetStage(stageID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.Steps[stageID]; !exists {
		p.order = append(p.order, stageID)
	}
	p.Steps[stageID] = state
}

// OrderedStages returns the step states in registration order
func (p *OperationState) OrderedStages() []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*StepState, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.Steps[id])
	}
	return out
}

// Table returns the current table, nil before the load step ran
func (p *OperationState) Table() *table.Table {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table
}

// SetTable replaces the current table
func (p *OperationState) SetTable(t *table.Table) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.table = t
}

// GetContext returns an artifact left by a step
func (p *OperationState) GetContext(key string) (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	val, ok := p.Context[key]
	return val, ok
}

// SetContext stores an artifact under key
func (p *OperationState) SetContext(key string, value interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Context[key] = value
}

// Duration is the run time so far, or the total once the run ended
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// HasFailures reports whether any step failed
func (p *OperationState) HasFailures() bool {
	for _, step := range p.OrderedStages() {
		if step.GetStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}

// IsComplete reports whether every step reached a terminal status
func (p *OperationState) IsComplete() bool {
	for _, step := range p.OrderedStages() {
		status := step.GetStatus()
		if status == StepStatusPending || status == StepStatusActive {
			return false
		}
	}
	return true
}
