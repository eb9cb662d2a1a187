// Package runstore provides core.RunStore implementations. The in-memory
// variant suits tests and single-process deployments; the sqlite subpackage
// adds durability.
package runstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/tripflow/core"
)

// ErrNotFound is returned when no record exists for a run id.
var ErrNotFound = errors.New("run record not found")

// ErrTerminal is returned on any write to a completed or failed record.
var ErrTerminal = errors.New("run record is terminal")

// InMemoryStore is a volatile RunStore keeping records in a process local
// map. It is safe for concurrent access: all writes per run are serialized
// under one lock, and every read returns a defensive clone so callers can
// never mutate stored state.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*core.RunRecord
}

// NewInMemoryStore constructs an empty in-memory run store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[string]*core.RunRecord)}
}

// Create implements core.RunStore.
func (s *InMemoryStore) Create(input core.TravelRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rec := &core.RunRecord{
		ID:      core.NewID(),
		Input:   input,
		Status:  core.RunStatusRunning,
		Created: now,
		Updated: now,
	}
	s.runs[rec.ID] = rec.Clone()

	return rec.ID, nil
}

// mutableLocked returns the stored record for a write; the caller must hold
// the write lock.
func (s *InMemoryStore) mutableLocked(runID string) (*core.RunRecord, error) {
	rec, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if rec.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrTerminal, runID)
	}
	return rec, nil
}

// AppendStepResult implements core.RunStore.
func (s *InMemoryStore) AppendStepResult(runID string, res core.StepResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.mutableLocked(runID)
	if err != nil {
		return err
	}

	rec.Steps = append(rec.Steps, res.Clone())
	rec.Updated = time.Now().UTC()

	return nil
}

// AppendTransition implements core.RunStore.
func (s *InMemoryStore) AppendTransition(runID string, tr core.StageTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.mutableLocked(runID)
	if err != nil {
		return err
	}

	rec.Transitions = append(rec.Transitions, tr)
	rec.Updated = time.Now().UTC()

	return nil
}

// Complete implements core.RunStore.
func (s *InMemoryStore) Complete(runID string, final string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.mutableLocked(runID)
	if err != nil {
		return err
	}

	rec.Final = final
	rec.Status = core.RunStatusCompleted
	rec.Updated = time.Now().UTC()

	return nil
}

// Fail implements core.RunStore.
func (s *InMemoryStore) Fail(runID string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.mutableLocked(runID)
	if err != nil {
		return err
	}

	rec.FailureReason = reason
	rec.Status = core.RunStatusFailed
	rec.Updated = time.Now().UTC()

	return nil
}

// Get implements core.RunStore. The returned record is a clone; reading never
// mutates stored state.
func (s *InMemoryStore) Get(runID string) (*core.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}

	return rec.Clone(), nil
}
