package core

import (
	"time"

	"github.com/google/uuid"
)

// NewID generates a unique identifier for runs, steps and tool call attempts.
func NewID() string { return uuid.NewString() }

// StepStatus reports how a single step invocation ended.
type StepStatus string

const (
	// StepStatusSuccess marks a step whose agent produced a payload.
	StepStatusSuccess StepStatus = "success"
	// StepStatusFailure marks a step whose agent signalled a fatal error.
	StepStatusFailure StepStatus = "failure"
)

// ToolCallAttempt records one attempt to invoke an external capability. It is
// audit trail only, never authoritative state: the fallback chain uses it for
// observability and tests assert against it.
type ToolCallAttempt struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	Elapsed   time.Duration  `json:"elapsed"`
}

// Succeeded reports whether the attempt produced a result.
func (a ToolCallAttempt) Succeeded() bool { return a.Error == "" }

// StepResult is the output of one agent invocation, tagged with the name of
// the step that produced it. It is owned by that step until the engine merges
// it into the session context and the run record.
type StepResult struct {
	Step      string            `json:"step"`
	Status    StepStatus        `json:"status"`
	Payload   string            `json:"payload,omitempty"`
	ToolCalls []ToolCallAttempt `json:"tool_calls,omitempty"`
	Error     string            `json:"error,omitempty"`
	Started   time.Time         `json:"started"`
	Ended     time.Time         `json:"ended"`
}

// Clone returns a deep copy safe for independent mutation.
func (r StepResult) Clone() StepResult {
	c := r
	c.ToolCalls = make([]ToolCallAttempt, len(r.ToolCalls))
	copy(c.ToolCalls, r.ToolCalls)
	for i, tc := range c.ToolCalls {
		if tc.Arguments != nil {
			args := make(map[string]any, len(tc.Arguments))
			for k, v := range tc.Arguments {
				args[k] = v
			}
			c.ToolCalls[i].Arguments = args
		}
	}
	return c
}
