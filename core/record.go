package core

import "time"

// RunStatus tracks the lifecycle of a run record. Transitions are monotonic:
// running -> completed or running -> failed, never back.
type RunStatus string

const (
	// RunStatusRunning marks a run whose stages are still executing.
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted marks a run whose final stage produced an output.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed marks a run aborted by a stage failure or cancellation.
	RunStatusFailed RunStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// StageTransition is an audit entry appended to the run record whenever a
// stage starts or ends, regardless of outcome.
type StageTransition struct {
	Stage  string    `json:"stage"`
	Status string    `json:"status"` // started, completed, failed
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// RunRecord is the persisted trace of one workflow run: the validated input,
// every step result in merge order, every stage transition, and the final
// output once the run completes. Owned by the RunStore; immutable once the
// status is terminal.
type RunRecord struct {
	ID            string            `json:"id"`
	Input         TravelRequest     `json:"input"`
	Steps         []StepResult      `json:"steps,omitempty"`
	Transitions   []StageTransition `json:"transitions,omitempty"`
	Final         string            `json:"final,omitempty"`
	Status        RunStatus         `json:"status"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Created       time.Time         `json:"created"`
	Updated       time.Time         `json:"updated"`
}

// Clone returns a deep copy of the record so store reads never expose
// internal state to mutation.
func (r *RunRecord) Clone() *RunRecord {
	c := *r

	c.Steps = make([]StepResult, len(r.Steps))
	for i, s := range r.Steps {
		c.Steps[i] = s.Clone()
	}

	c.Transitions = make([]StageTransition, len(r.Transitions))
	copy(c.Transitions, r.Transitions)

	interests := make([]string, len(r.Input.InterestsActivities))
	copy(interests, r.Input.InterestsActivities)
	c.Input.InterestsActivities = interests

	return &c
}
