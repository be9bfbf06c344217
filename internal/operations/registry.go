package operations

import (
	"fmt"
	"sync"
)

// Registry holds the pipeline steps. Execution order is registration order.
type Registry struct {
	mu    sync.RWMutex
	steps []Step
	index map[string]int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		steps: []Step{},
		index: make(map[string]int),
	}
}

// Register appends a step. IDs must be non-empty and unique.
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil Step")
	}
	id := step.ID()
	if id == "" {
		return fmt.Errorf("Step ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.index[id]; dup {
		return fmt.Errorf("Step %q already registered", id)
	}
	r.index[id] = len(r.steps)
	r.steps = append(r.steps, step)
	return nil
}

// Get looks a step up by ID
func (r *Registry) Get(id string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("Step %q not found", id)
	}
	return r.steps[i], nil
}

// Has reports whether a step with this ID is registered
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[id]
	return ok
}

// List returns the steps in execution order
func (r *Registry) List() []Step {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Step{}, r.steps...)
}

// ListIDs returns the step IDs in execution order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.steps))
	for i, s := range r.steps {
		ids[i] = s.ID()
	}
	return ids
}

// Count returns the number of registered steps
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.steps)
}
