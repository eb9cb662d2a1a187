package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/tripflow/core"
	"github.com/hupe1980/tripflow/logging"
	"github.com/hupe1980/tripflow/runstore"
)

const (
	// DefaultMaxParallelSteps bounds concurrent members in parallel stages.
	DefaultMaxParallelSteps = 4
	// DefaultRunTimeout caps a full pipeline walk.
	DefaultRunTimeout = 10 * time.Minute
)

// Options configures an Engine.
type Options struct {
	// RunStore persists run records. Defaults to an in-memory store.
	RunStore core.RunStore
	// Logger receives engine events. Defaults to a slog text logger.
	Logger logging.Logger
	// MaxParallelSteps bounds concurrency inside parallel stages.
	// Zero means unbounded; negative values fall back to the default.
	MaxParallelSteps int
	// RunTimeout caps the duration of one run.
	RunTimeout time.Duration
}

// Engine walks an ordered list of stages for each run. It validates the input
// before any agent work, seeds the session context, records every stage
// transition and step result, and settles the run record exactly once.
type Engine struct {
	stages      []Stage
	store       core.RunStore
	logger      logging.Logger
	maxParallel int
	runTimeout  time.Duration
}

// NewEngine creates an engine over the given stage sequence.
func NewEngine(stages []Stage, optFns ...func(o *Options)) *Engine {
	opts := Options{
		MaxParallelSteps: DefaultMaxParallelSteps,
		RunTimeout:       DefaultRunTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.RunStore == nil {
		opts.RunStore = runstore.NewInMemoryStore()
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewDefaultSlogLogger()
	}

	if opts.MaxParallelSteps < 0 {
		opts.MaxParallelSteps = DefaultMaxParallelSteps
	}

	if opts.RunTimeout <= 0 {
		opts.RunTimeout = DefaultRunTimeout
	}

	return &Engine{
		stages:      stages,
		store:       opts.RunStore,
		logger:      opts.Logger,
		maxParallel: opts.MaxParallelSteps,
		runTimeout:  opts.RunTimeout,
	}
}

// Store returns the engine's run store, for callers that need to read records
// back after a run.
func (e *Engine) Store() core.RunStore { return e.store }

// RunResult is the outcome of a completed run. On stage failure the engine
// still returns a RunResult carrying the run id, so callers can fetch the
// audit record alongside the error.
type RunResult struct {
	RunID string
	Final string
}

// RunJSON decodes and validates a raw request, then executes the pipeline.
func (e *Engine) RunJSON(ctx context.Context, raw []byte) (*RunResult, error) {
	input, err := core.ParseTravelRequest(raw)
	if err != nil {
		return nil, err
	}

	return e.Run(ctx, input)
}

// Run validates the input and walks the stage sequence. A validation failure
// returns before any record is created or any agent does work. A stage
// failure halts the walk, settles the record as failed and returns a
// StageFailure; later stages never execute.
func (e *Engine) Run(ctx context.Context, input core.TravelRequest) (*RunResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	runID, err := e.store.Create(input)
	if err != nil {
		return nil, fmt.Errorf("create run record: %w", err)
	}

	e.logger.Info("workflow.run.started", "run_id", runID, "stages", len(e.stages))

	ctx, cancel := context.WithTimeout(ctx, e.runTimeout)
	defer cancel()

	env := &Env{
		Session:     core.NewSessionContext(input),
		MaxParallel: e.maxParallel,
		Logger:      e.logger,
	}

	for _, stage := range e.stages {
		if err := ctx.Err(); err != nil {
			return e.fail(runID, stage.Name(), fmt.Errorf("run cancelled: %w", err))
		}

		e.transition(runID, stage.Name(), "started", "")
		e.logger.Info("workflow.stage.started", "run_id", runID, "stage", stage.Name())

		results, err := stage.Run(ctx, env)

		for _, res := range results {
			if serr := e.store.AppendStepResult(runID, res); serr != nil {
				e.logger.Error("workflow.store.append_failed", "run_id", runID, "step", res.Step, "error", serr)
			}
		}

		if err != nil {
			failure := stageFailure(stage.Name(), results, err)
			e.transition(runID, stage.Name(), "failed", failure.Error())
			res, _ := e.fail(runID, stage.Name(), failure)
			return res, failure
		}

		e.transition(runID, stage.Name(), "completed", "")
		e.logger.Info("workflow.stage.completed", "run_id", runID, "stage", stage.Name())
	}

	final := e.finalOutput(env.Session)

	if err := e.store.Complete(runID, final); err != nil {
		return nil, fmt.Errorf("complete run record: %w", err)
	}

	e.logger.Info("workflow.run.completed", "run_id", runID)

	return &RunResult{RunID: runID, Final: final}, nil
}

// finalOutput returns the last recorded step output, which by construction is
// the consolidation stage's payload.
func (e *Engine) finalOutput(sc *core.SessionContext) string {
	names := sc.StepNames()
	if len(names) == 0 {
		return ""
	}

	payload, _ := sc.Output(names[len(names)-1])
	return payload
}

func (e *Engine) transition(runID, stage, status, detail string) {
	tr := core.StageTransition{
		Stage:  stage,
		Status: status,
		Detail: detail,
		At:     time.Now().UTC(),
	}

	if err := e.store.AppendTransition(runID, tr); err != nil {
		e.logger.Error("workflow.store.transition_failed", "run_id", runID, "stage", stage, "error", err)
	}
}

func (e *Engine) fail(runID, stage string, cause error) (*RunResult, error) {
	e.logger.Error("workflow.run.failed", "run_id", runID, "stage", stage, "error", cause)

	if err := e.store.Fail(runID, cause.Error()); err != nil {
		e.logger.Error("workflow.store.fail_failed", "run_id", runID, "error", err)
	}

	return &RunResult{RunID: runID}, cause
}

// stageFailure wraps a member error into a StageFailure, naming the failing
// step and retaining the results of members that did complete.
func stageFailure(stage string, results []core.StepResult, err error) *core.StageFailure {
	step := stage

	var af *core.AgentFailure
	if errors.As(err, &af) {
		step = af.Agent
	}

	// The first failed result names the step; the agent name is only a
	// fallback since steps may be named independently of their agents.
	for _, res := range results {
		if res.Status == core.StepStatusFailure {
			step = res.Step
			break
		}
	}

	var partial []core.StepResult
	for _, res := range results {
		if res.Status == core.StepStatusSuccess {
			partial = append(partial, res)
		}
	}

	return &core.StageFailure{
		Stage:   stage,
		Step:    step,
		Err:     err,
		Partial: partial,
	}
}
