package core

import "context"

// AgentResponse is the outcome of one agent invocation: the produced payload
// plus every tool call attempt made while producing it.
type AgentResponse struct {
	Payload   string
	ToolCalls []ToolCallAttempt
}

// Agent turns a session context view into a payload, optionally using tools.
//
// Implementations are stateless across invocations (aside from an optional
// per-run memory store) and polymorphic over the underlying reasoning
// capability; callers depend only on this contract. A fatal error return is
// an *AgentFailure and aborts the enclosing step.
type Agent interface {
	Name() string
	Respond(ctx context.Context, sc *SessionContext) (*AgentResponse, error)
}
