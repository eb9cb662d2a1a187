package core

import (
	"fmt"
	"strings"
)

// FieldViolation describes a single schema violation in a TravelRequest.
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

// ValidationError reports a rejected input. It is always produced before any
// agent work starts, so a caller receiving one can correct and resubmit.
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "invalid travel request"
	}

	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field != "" {
			fields = append(fields, v.Field)
		}
	}
	if len(fields) == 0 {
		return fmt.Sprintf("invalid travel request: %s", e.Violations[0].Message)
	}

	return fmt.Sprintf("invalid travel request: fields [%s]", strings.Join(fields, ", "))
}

// Fields returns the names of all offending fields.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

// AgentFailure signals that an agent could not fulfil its contract: the
// reasoning capability was unreachable, the tool-call budget was exceeded, or
// a capability the agent treats as mandatory was exhausted. It is fatal to the
// enclosing step.
type AgentFailure struct {
	Agent string
	Err   error
}

func (e *AgentFailure) Error() string {
	return fmt.Sprintf("agent %s failed: %v", e.Agent, e.Err)
}

func (e *AgentFailure) Unwrap() error { return e.Err }

// StageFailure signals that a stage could not complete because one of its
// steps produced an AgentFailure. Partial contains the StepResults of members
// that did complete before the failure was detected, retained for diagnostics.
// No stage after a failed one executes.
type StageFailure struct {
	Stage   string
	Step    string
	Err     error
	Partial []StepResult
}

func (e *StageFailure) Error() string {
	return fmt.Sprintf("stage %s failed at step %s: %v", e.Stage, e.Step, e.Err)
}

func (e *StageFailure) Unwrap() error { return e.Err }
