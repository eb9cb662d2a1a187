package workflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tripflow/core"
	"github.com/hupe1980/tripflow/logging"
	"github.com/hupe1980/tripflow/runstore"
)

type fakeAgent struct {
	name     string
	payload  string
	delay    time.Duration
	err      error
	attempts []core.ToolCallAttempt
	calls    atomic.Int32
	observe  func(sc *core.SessionContext)
}

func (a *fakeAgent) Name() string { return a.name }

func (a *fakeAgent) Respond(ctx context.Context, sc *core.SessionContext) (*core.AgentResponse, error) {
	a.calls.Add(1)

	if a.observe != nil {
		a.observe(sc)
	}

	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return nil, &core.AgentFailure{Agent: a.name, Err: ctx.Err()}
		}
	}

	if a.err != nil {
		return &core.AgentResponse{ToolCalls: a.attempts}, &core.AgentFailure{Agent: a.name, Err: a.err}
	}

	return &core.AgentResponse{Payload: a.payload, ToolCalls: a.attempts}, nil
}

func testInput() core.TravelRequest {
	return core.TravelRequest{
		Destination:         "Lisbon, Portugal",
		TravelPurpose:       "leisure",
		TravelCompanions:    "couple",
		TravelDates:         "2026-10-05 to 2026-10-12",
		DepartureLocation:   "Berlin",
		DateFlexibility:     "slightly flexible",
		AccommodationType:   "hotel",
		Budget:              "$3000 USD",
		InterestsActivities: []string{"food tours"},
		TravelStyle:         "mid-range",
		Duration:            "7 days",
		BudgetFlexibility:   "moderate",
	}
}

func quietEngine(stages []Stage, store core.RunStore, optFns ...func(o *Options)) *Engine {
	return NewEngine(stages, append([]func(o *Options){
		func(o *Options) {
			o.RunStore = store
			o.Logger = logging.NoOpLogger{}
		},
	}, optFns...)...)
}

func TestParallelMergesInDeclaredOrder(t *testing.T) {
	// The slowest member is declared first; completion order is the reverse
	// of declared order, the merged view must not be.
	slow := &fakeAgent{name: "slow", payload: "slow out", delay: 60 * time.Millisecond}
	medium := &fakeAgent{name: "medium", payload: "medium out", delay: 30 * time.Millisecond}
	fast := &fakeAgent{name: "fast", payload: "fast out"}

	stage := NewParallel("research",
		NewStep("first", slow),
		NewStep("second", medium),
		NewStep("third", fast),
	)

	env := &Env{Session: core.NewSessionContext(testInput()), Logger: logging.NoOpLogger{}}

	results, err := stage.Run(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, []string{"first", "second", "third"}, env.Session.StepNames())

	payload, _ := env.Session.Output("first")
	assert.Equal(t, "slow out", payload)
}

func TestParallelMembersSeeInputOnly(t *testing.T) {
	observed := make([]int, 0, 2)
	var mu sync.Mutex

	observe := func(sc *core.SessionContext) {
		mu.Lock()
		observed = append(observed, sc.Len())
		mu.Unlock()
	}

	a := &fakeAgent{name: "a", payload: "a out", observe: observe, delay: 10 * time.Millisecond}
	b := &fakeAgent{name: "b", payload: "b out", observe: observe, delay: 10 * time.Millisecond}

	session := core.NewSessionContext(testInput())
	require.NoError(t, session.Append("earlier", "earlier out"))

	stage := NewParallel("research", NewStep("a", a), NewStep("b", b))
	env := &Env{Session: session, Logger: logging.NoOpLogger{}}

	_, err := stage.Run(context.Background(), env)
	require.NoError(t, err)

	// Neither member saw the earlier output nor a sibling's.
	assert.Equal(t, []int{0, 0}, observed)

	// The shared session still merged everything.
	assert.Equal(t, []string{"earlier", "a", "b"}, session.StepNames())
}

// gatedAgent tracks how many siblings run at once.
type gatedAgent struct {
	name    string
	running *atomic.Int32
	peak    *atomic.Int32
}

func (g *gatedAgent) Name() string { return g.name }

func (g *gatedAgent) Respond(context.Context, *core.SessionContext) (*core.AgentResponse, error) {
	n := g.running.Add(1)
	defer g.running.Add(-1)

	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}

	time.Sleep(20 * time.Millisecond)

	return &core.AgentResponse{Payload: g.name}, nil
}

func TestParallelBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32

	members := make([]*Step, 0, 4)
	for _, name := range []string{"a", "b", "c", "d"} {
		members = append(members, NewStep(name, &gatedAgent{name: name, running: &running, peak: &peak}))
	}

	stage := NewParallel("research", members...)
	env := &Env{Session: core.NewSessionContext(testInput()), MaxParallel: 2, Logger: logging.NoOpLogger{}}

	_, err := stage.Run(context.Background(), env)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestEngineRunCompletes(t *testing.T) {
	research := NewParallel("research",
		NewStep("weather", &fakeAgent{name: "weather", payload: "sunny"}),
		NewStep("transport", &fakeAgent{name: "transport", payload: "fly"}),
	)
	consolidate := NewStep("final", &fakeAgent{name: "final", payload: "the plan"})

	store := runstore.NewInMemoryStore()
	engine := quietEngine([]Stage{research, consolidate}, store)

	res, err := engine.Run(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, "the plan", res.Final)

	rec, err := store.Get(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusCompleted, rec.Status)
	assert.Equal(t, "the plan", rec.Final)
	assert.Len(t, rec.Steps, 3)

	// started and completed per stage.
	require.Len(t, rec.Transitions, 4)
	assert.Equal(t, "research", rec.Transitions[0].Stage)
	assert.Equal(t, "started", rec.Transitions[0].Status)
	assert.Equal(t, "completed", rec.Transitions[3].Status)
}

func TestEngineValidationShortCircuits(t *testing.T) {
	agent := &fakeAgent{name: "weather", payload: "never"}
	engine := quietEngine([]Stage{NewStep("weather", agent)}, runstore.NewInMemoryStore())

	input := testInput()
	input.Destination = ""

	_, err := engine.Run(context.Background(), input)

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields(), "destination")

	// No agent work, no tool attempts, nothing recorded.
	assert.Equal(t, int32(0), agent.calls.Load())
}

func TestEngineStageFailureHaltsRun(t *testing.T) {
	boom := errors.New("capability down")

	research := NewParallel("research",
		NewStep("weather", &fakeAgent{name: "weather", payload: "sunny"}),
		NewStep("transport", &fakeAgent{
			name: "transport",
			err:  boom,
			attempts: []core.ToolCallAttempt{
				{Tool: "web_search", Error: "connection refused"},
			},
		}),
	)
	later := &fakeAgent{name: "final", payload: "never"}

	store := runstore.NewInMemoryStore()
	engine := quietEngine([]Stage{research, NewStep("final", later)}, store)

	res, err := engine.Run(context.Background(), testInput())

	var sf *core.StageFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, "research", sf.Stage)
	assert.Equal(t, "transport", sf.Step)

	// Completed siblings are retained for diagnostics.
	require.Len(t, sf.Partial, 1)
	assert.Equal(t, "weather", sf.Partial[0].Step)

	// No stage after the failed one executes.
	assert.Equal(t, int32(0), later.calls.Load())

	require.NotNil(t, res)
	rec, err := store.Get(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusFailed, rec.Status)
	assert.Contains(t, rec.FailureReason, "transport")

	// Both member results recorded, including the failed one, which keeps
	// the tool call attempts made before it failed.
	require.Len(t, rec.Steps, 2)
	assert.Equal(t, core.StepStatusFailure, rec.Steps[1].Status)
	require.Len(t, rec.Steps[1].ToolCalls, 1)
	assert.Equal(t, "web_search", rec.Steps[1].ToolCalls[0].Tool)
}

func TestEngineCancelledRunFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := runstore.NewInMemoryStore()
	engine := quietEngine([]Stage{NewStep("weather", &fakeAgent{name: "weather"})}, store)

	res, err := engine.Run(ctx, testInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")

	rec, recErr := store.Get(res.RunID)
	require.NoError(t, recErr)
	assert.Equal(t, core.RunStatusFailed, rec.Status)
	assert.Contains(t, rec.FailureReason, "cancel")
}

func TestEngineRunJSON(t *testing.T) {
	engine := quietEngine([]Stage{NewStep("final", &fakeAgent{name: "final", payload: "plan"})}, runstore.NewInMemoryStore())

	_, err := engine.RunJSON(context.Background(), []byte(`{"destination":`))

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
}
