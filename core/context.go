package core

import (
	"fmt"
	"sync"
	"time"
)

// SessionContext accumulates every prior step's output for one run, keyed by
// step name, alongside the original validated input.
//
// Contract:
//   - Append-only: once a step's output is written it is never mutated, only
//     read by later steps.
//   - Outputs keeps insertion order so downstream prompts are reproducible.
//   - InputOnly produces the snapshot handed to parallel group members, which
//     must never observe sibling in-flight results.
//
// The workflow engine is the only writer between stages; steps treat the
// context as read-only during execution. Safe for concurrent reads.
type SessionContext struct {
	mu      sync.RWMutex
	input   TravelRequest
	order   []string
	outputs map[string]string
	created time.Time
}

// NewSessionContext creates a context seeded with a validated input.
func NewSessionContext(input TravelRequest) *SessionContext {
	return &SessionContext{
		input:   input,
		outputs: map[string]string{},
		created: time.Now().UTC(),
	}
}

// Input returns the original validated request.
func (sc *SessionContext) Input() TravelRequest {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.input
}

// Append records a step's output. It errors if the step name is already
// present, enforcing the append-only invariant.
func (sc *SessionContext) Append(step, payload string) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if _, exists := sc.outputs[step]; exists {
		return fmt.Errorf("session context: step %q already recorded", step)
	}

	sc.outputs[step] = payload
	sc.order = append(sc.order, step)

	return nil
}

// Output returns the payload a named step produced, if any.
func (sc *SessionContext) Output(step string) (string, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	payload, ok := sc.outputs[step]
	return payload, ok
}

// StepNames returns the recorded step names in insertion order.
func (sc *SessionContext) StepNames() []string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	names := make([]string, len(sc.order))
	copy(names, sc.order)
	return names
}

// Len returns the number of recorded step outputs.
func (sc *SessionContext) Len() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.order)
}

// InputOnly returns a fresh context carrying only the original input. Parallel
// group members execute against such a snapshot so completion timing can never
// leak sibling output into their view.
func (sc *SessionContext) InputOnly() *SessionContext {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return NewSessionContext(sc.input)
}

// Clone returns a deep copy of the context including all recorded outputs.
func (sc *SessionContext) Clone() *SessionContext {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	c := NewSessionContext(sc.input)
	c.created = sc.created
	c.order = make([]string, len(sc.order))
	copy(c.order, sc.order)
	for k, v := range sc.outputs {
		c.outputs[k] = v
	}

	return c
}
