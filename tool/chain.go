package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/tripflow/core"
	"github.com/hupe1980/tripflow/logging"
)

// DefaultAttemptTimeout bounds a single tool attempt. Matches the upstream
// service timeout the currency API contract documents.
const DefaultAttemptTimeout = 20 * time.Second

// ExhaustedError is the terminal error returned when every tool in a chain
// failed recoverably. Whether exhaustion aborts the step or degrades its
// payload is the calling agent's policy, not the chain's.
type ExhaustedError struct {
	Capability string
	Attempts   int
	LastErr    error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("tool chain for %s exhausted after %d attempts: %v", e.Capability, e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// Invoke executes a single tool attempt under the given timeout and returns
// the result alongside an audit record of the attempt.
func Invoke(ctx context.Context, t Tool, args map[string]any, timeout time.Duration) (string, core.ToolCallAttempt, error) {
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, err := t.Call(attemptCtx, args)

	attempt := core.ToolCallAttempt{
		Tool:      t.Name(),
		Arguments: args,
		Elapsed:   time.Since(start),
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = NewRecoverableError(t.Name(), CodeNetwork, "attempt timed out")
		}
		attempt.Error = err.Error()
		return "", attempt, err
	}

	attempt.Result = result
	return result, attempt, nil
}

// ChainOptions configures a fallback chain.
type ChainOptions struct {
	// AttemptTimeout bounds each individual tool attempt.
	AttemptTimeout time.Duration
	// Equivalent names tools that provide the same capability as their
	// predecessor. A value error advances to the next tool only when that
	// tool is declared equivalent.
	Equivalent []string
	// Logger for per-attempt audit logging. Defaults to NoOp.
	Logger logging.Logger
}

// Chain tries tools strictly in declared preference order. It advances to the
// next tool only when the current attempt failed with a recoverable error, or
// when the next tool is an equivalent capability. Every attempt, success or
// failure, is recorded as a ToolCallAttempt.
type Chain struct {
	capability     string
	tools          []Tool
	equivalent     map[string]bool
	attemptTimeout time.Duration
	logger         logging.Logger
}

// NewChain builds a fallback chain for one capability. The first tool's name
// is the model-facing name of the capability.
func NewChain(capability string, tools []Tool, optFns ...func(o *ChainOptions)) *Chain {
	opts := ChainOptions{
		AttemptTimeout: DefaultAttemptTimeout,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	equivalent := make(map[string]bool, len(opts.Equivalent))
	for _, name := range opts.Equivalent {
		equivalent[name] = true
	}

	return &Chain{
		capability:     capability,
		tools:          tools,
		equivalent:     equivalent,
		attemptTimeout: opts.AttemptTimeout,
		logger:         opts.Logger,
	}
}

// Capability returns the model-facing name of the chained capability.
func (c *Chain) Capability() string { return c.capability }

// Tools returns the ordered tool list.
func (c *Chain) Tools() []Tool {
	out := make([]Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

// Invoke runs the fallback sequence for one request. It returns the first
// successful result, the full ordered attempt audit, and an error when the
// chain stopped without success: a value error surfaced immediately, a
// non-recoverable execution error, or *ExhaustedError when every tool failed
// recoverably.
func (c *Chain) Invoke(ctx context.Context, args map[string]any) (string, []core.ToolCallAttempt, error) {
	if len(c.tools) == 0 {
		return "", nil, &ExhaustedError{Capability: c.capability, Attempts: 0, LastErr: errors.New("no tools configured")}
	}

	attempts := make([]core.ToolCallAttempt, 0, len(c.tools))

	var lastErr error
	for i, t := range c.tools {
		if err := ctx.Err(); err != nil {
			return "", attempts, err
		}

		c.logger.Debug("tool.chain.attempt", "capability", c.capability, "tool", t.Name(), "position", i)

		result, attempt, err := Invoke(ctx, t, args, c.attemptTimeout)
		attempts = append(attempts, attempt)

		if err == nil {
			c.logger.Info("tool.chain.success", "capability", c.capability, "tool", t.Name(), "attempts", len(attempts))
			return result, attempts, nil
		}

		lastErr = err
		c.logger.Warn("tool.chain.attempt_failed", "capability", c.capability, "tool", t.Name(), "error", err.Error())

		if IsRecoverable(err) {
			continue
		}

		// Value errors only continue into a declared equivalent capability;
		// any other hard failure stops the chain immediately.
		var te *Error
		if errors.As(err, &te) && te.Code == CodeMissingField && i+1 < len(c.tools) && c.equivalent[c.tools[i+1].Name()] {
			continue
		}

		return "", attempts, err
	}

	c.logger.Warn("tool.chain.exhausted", "capability", c.capability, "attempts", len(attempts))

	return "", attempts, &ExhaustedError{Capability: c.capability, Attempts: len(attempts), LastErr: lastErr}
}
