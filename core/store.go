package core

// RunStore persists run records. It is a pure persistence boundary: the
// workflow engine depends on this contract only, never on a storage
// technology.
//
// Implementations must serialize writes per run id and enforce monotonic
// status transitions: running -> completed | failed, immutable once terminal.
type RunStore interface {
	// Create persists a new record in running state and returns its run id.
	Create(input TravelRequest) (string, error)

	// AppendStepResult appends a completed step's result to a running record.
	AppendStepResult(runID string, res StepResult) error

	// AppendTransition appends a stage transition audit entry.
	AppendTransition(runID string, tr StageTransition) error

	// Complete marks the run completed and stores the final output.
	Complete(runID string, final string) error

	// Fail marks the run failed with a reason.
	Fail(runID string, reason string) error

	// Get returns a defensive copy of the record for audit and debugging.
	Get(runID string) (*RunRecord, error)
}

// MemoryStore offers agents an optional scratch memory, partitioned by a
// caller-chosen scope key. Workers scope by their own name, so a specialist's
// notes persist across runs; callers wanting run-scoped memory pass a fresh
// store or a run id per run. Contents are advisory and never drive
// orchestration decisions.
type MemoryStore interface {
	Get(scope string) (map[string]any, error)
	Put(scope string, delta map[string]any) error
	Search(scope, query string, limit int) ([]SearchResult, error)
}

// SearchResult is one memory search hit.
type SearchResult struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
