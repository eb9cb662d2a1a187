package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/tripflow/core"
	"github.com/hupe1980/tripflow/logging"
)

// Env is the per-run execution surface the engine hands to each stage.
type Env struct {
	// Session accumulates step outputs across stages.
	Session *core.SessionContext
	// MaxParallel bounds concurrent members inside a parallel stage.
	// Zero means unbounded.
	MaxParallel int
	// Logger receives stage and step events.
	Logger logging.Logger
}

// Stage is one node in the pipeline walk. A stage runs one or more agents,
// records their outputs into the session context and returns every StepResult
// it produced, including failed ones. A non-nil error aborts the walk.
type Stage interface {
	Name() string
	Run(ctx context.Context, env *Env) ([]core.StepResult, error)
}

// Step is a stage running exactly one agent against the full session context,
// so the agent sees the original input plus every prior step's output. Step
// outputs are recorded under the step name, not the agent name.
type Step struct {
	name  string
	agent core.Agent
}

// NewStep creates a single-agent stage. An empty name falls back to the
// agent's name.
func NewStep(name string, a core.Agent) *Step {
	if name == "" {
		name = a.Name()
	}
	return &Step{name: name, agent: a}
}

// Name implements Stage.
func (s *Step) Name() string { return s.name }

// execute runs the step's agent against a session context and captures the
// outcome as a StepResult. The agent's error, if any, is returned alongside
// the result so the caller decides how it propagates.
func (s *Step) execute(ctx context.Context, sc *core.SessionContext) (core.StepResult, error) {
	res := core.StepResult{
		Step:    s.name,
		Started: time.Now().UTC(),
	}

	resp, err := s.agent.Respond(ctx, sc)
	res.Ended = time.Now().UTC()

	if resp != nil {
		res.ToolCalls = resp.ToolCalls
	}

	if err != nil {
		res.Status = core.StepStatusFailure
		res.Error = err.Error()
		return res, err
	}

	res.Status = core.StepStatusSuccess
	res.Payload = resp.Payload

	return res, nil
}

// Run implements Stage.
func (s *Step) Run(ctx context.Context, env *Env) ([]core.StepResult, error) {
	res, err := s.execute(ctx, env.Session)
	if err != nil {
		return []core.StepResult{res}, err
	}

	if err := env.Session.Append(s.name, res.Payload); err != nil {
		return []core.StepResult{res}, err
	}

	return []core.StepResult{res}, nil
}

// Parallel is a stage whose member steps run concurrently. Every member
// executes against an input-only snapshot of the session, so no member can
// observe a sibling's in-flight output. All members run to completion; their
// outputs are then merged into the session strictly in declared order, making
// downstream prompts independent of completion timing.
type Parallel struct {
	name    string
	members []*Step
}

// NewParallel creates a concurrent stage over the given member steps.
func NewParallel(name string, members ...*Step) *Parallel {
	return &Parallel{name: name, members: members}
}

// Name implements Stage.
func (p *Parallel) Name() string { return p.name }

// Run implements Stage. On member failure it still returns every member's
// StepResult and, in declared order, the first failing member's error.
func (p *Parallel) Run(ctx context.Context, env *Env) ([]core.StepResult, error) {
	var (
		wg      sync.WaitGroup
		results = make([]core.StepResult, len(p.members))
		errs    = make([]error, len(p.members))
	)

	var sem chan struct{}
	if env.MaxParallel > 0 {
		sem = make(chan struct{}, env.MaxParallel)
	}

	for i, member := range p.members {
		wg.Add(1)

		go func(i int, s *Step) {
			defer wg.Done()

			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			snapshot := env.Session.InputOnly()
			results[i], errs[i] = s.execute(ctx, snapshot)
		}(i, member)
	}

	wg.Wait()

	// Merge in declared order so the downstream view is deterministic.
	var firstErr error
	for i, member := range p.members {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}

		if err := env.Session.Append(member.Name(), results[i].Payload); err != nil {
			return results, fmt.Errorf("merge %s output: %w", member.Name(), err)
		}
	}

	return results, firstErr
}
