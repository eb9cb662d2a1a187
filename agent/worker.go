// Package agent implements the worker that binds a reasoning capability to a
// tool set and turns session context views into step payloads.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/tripflow/core"
	"github.com/hupe1980/tripflow/logging"
	"github.com/hupe1980/tripflow/model"
	"github.com/hupe1980/tripflow/tool"
)

// DefaultMaxTurns bounds the model round trips per invocation so a
// tool-calling loop cannot spin forever.
const DefaultMaxTurns = 8

// Options configures a Worker instance. Use functional options with NewWorker
// to override defaults.
type Options struct {
	// Instruction carries the opaque behavioral configuration forwarded
	// verbatim to the reasoning capability.
	Instruction Instruction
	// Tools is the ordered list of capabilities the worker may invoke.
	Tools []tool.Tool
	// Chains declares fallback chains. A chain replaces the single-tool
	// invocation for the capability it names.
	Chains []*tool.Chain
	// ToolCallLimit caps model-requested tool calls per invocation.
	// 0 means unlimited. Exceeding it is fatal to the step.
	ToolCallLimit int
	// AttemptTimeout bounds each unchained tool attempt.
	AttemptTimeout time.Duration
	// FailOnToolExhaustion treats an exhausted fallback chain as fatal
	// instead of degrading the payload.
	FailOnToolExhaustion bool
	// MaxTurns bounds model round trips per invocation.
	MaxTurns int
	// MemoryStore, when set, receives the final payload as scratch memory
	// scoped by the worker name, so a specialist's last answer survives
	// across runs.
	MemoryStore core.MemoryStore
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Worker is the concrete core.Agent: one reasoning capability, an ordered
// tool set with optional fallback chains, and opaque instructions. A Worker
// is stateless across invocations (aside from the optional memory store) and
// safe for concurrent use; it is shared across runs, never owned by a step.
type Worker struct {
	name             string
	llm              model.Model
	instruction      Instruction
	tools            []tool.Tool
	chains           map[string]*tool.Chain
	toolCallLimit    int
	attemptTimeout   time.Duration
	failOnExhaustion bool
	maxTurns         int
	memory           core.MemoryStore
	logger           logging.Logger
}

// NewWorker creates a worker bound to a reasoning capability.
func NewWorker(name string, llm model.Model, optFns ...func(o *Options)) *Worker {
	opts := Options{
		Instruction:    NewInstruction(fmt.Sprintf("You are %s, a travel planning specialist.", name)),
		AttemptTimeout: tool.DefaultAttemptTimeout,
		MaxTurns:       DefaultMaxTurns,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	chains := make(map[string]*tool.Chain, len(opts.Chains))
	for _, c := range opts.Chains {
		chains[c.Capability()] = c
	}

	return &Worker{
		name:             name,
		llm:              llm,
		instruction:      opts.Instruction,
		tools:            opts.Tools,
		chains:           chains,
		toolCallLimit:    opts.ToolCallLimit,
		attemptTimeout:   opts.AttemptTimeout,
		failOnExhaustion: opts.FailOnToolExhaustion,
		maxTurns:         opts.MaxTurns,
		memory:           opts.MemoryStore,
		logger:           opts.Logger,
	}
}

// Name implements core.Agent.
func (w *Worker) Name() string { return w.name }

// Tools returns the worker's declared tool capabilities.
func (w *Worker) Tools() []tool.Tool {
	out := make([]tool.Tool, len(w.tools))
	copy(out, w.tools)
	return out
}

// findTool returns the declared tool with the given name.
func (w *Worker) findTool(name string) (tool.Tool, bool) {
	for _, t := range w.tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// toolDefinitions exposes the declared tools to the reasoning capability.
// Each fallback chain surfaces as a single callable named after the
// capability, described by its preferred tool; the model never sees the
// fallbacks behind it.
func (w *Worker) toolDefinitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(w.tools)+len(w.chains))
	for _, t := range w.tools {
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}

	for _, c := range w.chains {
		tools := c.Tools()
		if len(tools) == 0 {
			continue
		}
		defs = append(defs, model.ToolDefinition{
			Name:        c.Capability(),
			Description: tools[0].Description(),
			Parameters:  tools[0].Parameters(),
		})
	}

	return defs
}

// Respond implements core.Agent. It drives the model/tool loop: generate,
// execute any requested tool calls (through fallback chains where declared),
// feed the results back, and return the final text payload together with the
// full tool call audit.
//
// An unreachable reasoning capability, an exceeded tool-call budget or an
// exhausted mandatory capability yields *core.AgentFailure; reasoning
// failures are not retried here, retry policy belongs to the capability.
// The response returned alongside a failure still carries every tool call
// attempt made before it, so the audit trail survives the error path.
func (w *Worker) Respond(ctx context.Context, sc *core.SessionContext) (*core.AgentResponse, error) {
	lines, err := w.instruction.Resolve(sc)
	if err != nil {
		return nil, &core.AgentFailure{Agent: w.name, Err: fmt.Errorf("resolve instructions: %w", err)}
	}

	req := model.Request{
		Instructions: strings.Join(lines, "\n"),
		Messages:     []model.Message{{Role: model.RoleUser, Text: contextPrompt(sc)}},
		Tools:        w.toolDefinitions(),
	}

	var (
		attempts  []core.ToolCallAttempt
		toolCalls int
	)

	for turn := 0; turn < w.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return &core.AgentResponse{ToolCalls: attempts}, &core.AgentFailure{Agent: w.name, Err: err}
		}

		w.logger.Debug("agent.generate.start", "agent", w.name, "turn", turn)

		resp, err := w.llm.Generate(ctx, req)
		if err != nil {
			w.logger.Error("agent.generate.error", "agent", w.name, "error", err.Error())
			return &core.AgentResponse{ToolCalls: attempts}, &core.AgentFailure{Agent: w.name, Err: err}
		}

		if len(resp.ToolCalls) == 0 {
			w.logger.Debug("agent.respond.complete", "agent", w.name, "turns", turn+1, "tool_calls", toolCalls)
			w.saveMemory(resp.Text)
			return &core.AgentResponse{Payload: resp.Text, ToolCalls: attempts}, nil
		}

		results := make([]model.ToolResult, 0, len(resp.ToolCalls))
		for _, tc := range resp.ToolCalls {
			toolCalls++
			if w.toolCallLimit > 0 && toolCalls > w.toolCallLimit {
				return &core.AgentResponse{ToolCalls: attempts}, &core.AgentFailure{
					Agent: w.name,
					Err:   fmt.Errorf("tool call budget of %d exceeded", w.toolCallLimit),
				}
			}

			content, callAttempts, err := w.executeToolCall(ctx, tc)
			attempts = append(attempts, callAttempts...)
			if err != nil {
				return &core.AgentResponse{ToolCalls: attempts}, err
			}
			results = append(results, content)
		}

		req.Messages = append(req.Messages,
			model.Message{Role: model.RoleAssistant, Text: resp.Text, ToolCalls: resp.ToolCalls},
			model.Message{Role: model.RoleTool, ToolResults: results},
		)
	}

	return &core.AgentResponse{ToolCalls: attempts}, &core.AgentFailure{
		Agent: w.name,
		Err:   fmt.Errorf("no final response after %d turns", w.maxTurns),
	}
}

// executeToolCall resolves one model-requested tool call through the matching
// fallback chain or a single invocation. Chain exhaustion becomes a clearly
// labeled degraded result unless the worker treats the capability as
// mandatory; any other hard error is fed back to the model as an error result
// so it can adjust.
func (w *Worker) executeToolCall(ctx context.Context, tc model.ToolCall) (model.ToolResult, []core.ToolCallAttempt, error) {
	result := model.ToolResult{ID: tc.ID, Name: tc.Name}

	args := map[string]any{}
	if tc.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
			result.Content = fmt.Sprintf("invalid tool arguments: %v", err)
			result.IsError = true
			return result, []core.ToolCallAttempt{{Tool: tc.Name, Error: result.Content}}, nil
		}
	}

	if chain, ok := w.chains[tc.Name]; ok {
		content, chainAttempts, err := chain.Invoke(ctx, args)
		if err == nil {
			result.Content = content
			return result, chainAttempts, nil
		}

		var exhausted *tool.ExhaustedError
		if errors.As(err, &exhausted) {
			if w.failOnExhaustion {
				return result, chainAttempts, &core.AgentFailure{Agent: w.name, Err: exhausted}
			}
			w.logger.Warn("agent.tool.degraded", "agent", w.name, "capability", tc.Name, "error", exhausted.Error())
			result.Content = fmt.Sprintf("DEGRADED RESULT: capability %s is unavailable (%v); state this limitation explicitly in your answer", tc.Name, exhausted.LastErr)
			return result, chainAttempts, nil
		}

		result.Content = err.Error()
		result.IsError = true
		return result, chainAttempts, nil
	}

	t, ok := w.findTool(tc.Name)
	if !ok {
		result.Content = fmt.Sprintf("unknown tool %q", tc.Name)
		result.IsError = true
		return result, []core.ToolCallAttempt{{Tool: tc.Name, Error: result.Content}}, nil
	}

	content, attempt, err := tool.Invoke(ctx, t, args, w.attemptTimeout)
	if err != nil {
		result.Content = err.Error()
		result.IsError = true
		return result, []core.ToolCallAttempt{attempt}, nil
	}

	result.Content = content
	return result, []core.ToolCallAttempt{attempt}, nil
}

// saveMemory records the final payload as scratch memory when a store is
// configured, scoped by the worker name.
func (w *Worker) saveMemory(payload string) {
	if w.memory == nil || payload == "" {
		return
	}
	if err := w.memory.Put(w.name, map[string]any{"last_payload": payload}); err != nil {
		w.logger.Warn("agent.memory.put_failed", "agent", w.name, "error", err.Error())
	}
}
