package travel

import (
	"context"
	"time"

	"github.com/hupe1980/tripflow/agent"
	"github.com/hupe1980/tripflow/core"
	"github.com/hupe1980/tripflow/logging"
	"github.com/hupe1980/tripflow/memory"
	"github.com/hupe1980/tripflow/model"
	"github.com/hupe1980/tripflow/tool"
	"github.com/hupe1980/tripflow/workflow"
)

// Stage and step names of the travel planning pipeline. Downstream prompts
// key upstream research by step name, so these are part of the contract.
const (
	StageIndependentResearch = "Independent Research"

	StepWeatherResearch       = "Weather Research"
	StepDestinationResearch   = "Destination Research"
	StepAccommodationResearch = "Accommodation Research"
	StepTransportResearch     = "Transport Research"
	StepActivitiesCuration    = "Activities Curation"
	StepLocalInsights         = "Local Insights"
	StepBudgetOptimization    = "Budget Optimization"
	StepFinalItinerary        = "Final Itinerary"
)

// localInsiderToolCallLimit caps the Local Insider's search fan-out, which
// otherwise tends to chase every hidden gem it reads about.
const localInsiderToolCallLimit = 10

// Options configures a Planner.
type Options struct {
	// RunStore persists run records. Defaults to an in-memory store.
	RunStore core.RunStore
	// MemoryStore is shared scratch memory for the specialists.
	MemoryStore core.MemoryStore
	// Logger defaults to a slog text logger.
	Logger logging.Logger
	// MaxParallelSteps bounds the research fan-out.
	MaxParallelSteps int
	// RunTimeout caps a full planning run.
	RunTimeout time.Duration
	// SearchTool overrides the web search capability, mainly for tests.
	SearchTool tool.Tool
	// CurrencyTool overrides the primary currency converter.
	CurrencyTool tool.Tool
	// ForexTool overrides the market-data fallback converter.
	ForexTool tool.Tool
}

// Planner is the assembled travel planning pipeline: four research
// specialists fanned out in parallel, followed by activities curation, local
// insights, budget optimization and the final itinerary compilation.
type Planner struct {
	engine *workflow.Engine
}

// NewPlanner assembles the eight specialists around a shared reasoning
// capability and returns a ready-to-run planner.
func NewPlanner(llm model.Model, optFns ...func(o *Options)) *Planner {
	opts := Options{
		MaxParallelSteps: workflow.DefaultMaxParallelSteps,
		RunTimeout:       workflow.DefaultRunTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewDefaultSlogLogger()
	}

	if opts.MemoryStore == nil {
		opts.MemoryStore = memory.NewInMemoryStore()
	}

	if opts.SearchTool == nil {
		opts.SearchTool = tool.NewWebSearchTool()
	}

	if opts.CurrencyTool == nil {
		opts.CurrencyTool = tool.NewCurrencyTool()
	}

	if opts.ForexTool == nil {
		opts.ForexTool = tool.NewForexTool()
	}

	engine := workflow.NewEngine(buildStages(llm, &opts), func(o *workflow.Options) {
		o.RunStore = opts.RunStore
		o.Logger = opts.Logger
		o.MaxParallelSteps = opts.MaxParallelSteps
		o.RunTimeout = opts.RunTimeout
	})

	return &Planner{engine: engine}
}

// Plan executes the pipeline for a validated travel request.
func (p *Planner) Plan(ctx context.Context, req core.TravelRequest) (*workflow.RunResult, error) {
	return p.engine.Run(ctx, req)
}

// PlanJSON decodes, validates and executes a raw travel request.
func (p *Planner) PlanJSON(ctx context.Context, raw []byte) (*workflow.RunResult, error) {
	return p.engine.RunJSON(ctx, raw)
}

// Store returns the underlying run store for record lookups.
func (p *Planner) Store() core.RunStore { return p.engine.Store() }

// buildStages wires the specialists into the pipeline shape: independent
// research in parallel, then the four dependent stages in order.
func buildStages(llm model.Model, opts *Options) []workflow.Stage {
	newSpecialist := func(name string, lines []string, extra ...func(o *agent.Options)) *agent.Worker {
		return agent.NewWorker(name, llm, append([]func(o *agent.Options){
			func(o *agent.Options) {
				o.Instruction = agent.NewInstruction(lines...)
				o.Tools = []tool.Tool{opts.SearchTool}
				o.MemoryStore = opts.MemoryStore
				o.Logger = opts.Logger
			},
		}, extra...)...)
	}

	weather := newSpecialist("Weather Specialist", weatherInstructions)
	destination := newSpecialist("Destination Researcher", destinationInstructions)
	accommodation := newSpecialist("Accommodation Advisor", accommodationInstructions)
	transport := newSpecialist("Transportation Specialist", transportInstructions)
	activities := newSpecialist("Activities Curator", activitiesInstructions)

	insider := newSpecialist("Local Insider", localInsiderInstructions, func(o *agent.Options) {
		o.ToolCallLimit = localInsiderToolCallLimit
	})

	conversion := tool.NewChain(
		"convert_currency",
		[]tool.Tool{opts.CurrencyTool, opts.ForexTool},
		func(o *tool.ChainOptions) {
			// The market-data converter answers the same question, so a
			// bad-value outcome from the primary may advance to it.
			o.Equivalent = []string{opts.ForexTool.Name()}
			o.Logger = opts.Logger
		},
	)

	budget := newSpecialist("Budget Optimizer", budgetInstructions, func(o *agent.Options) {
		o.Chains = []*tool.Chain{conversion}
	})

	booking := newSpecialist("Booking Assistant", bookingInstructions)

	return []workflow.Stage{
		workflow.NewParallel(StageIndependentResearch,
			workflow.NewStep(StepWeatherResearch, weather),
			workflow.NewStep(StepDestinationResearch, destination),
			workflow.NewStep(StepAccommodationResearch, accommodation),
			workflow.NewStep(StepTransportResearch, transport),
		),
		workflow.NewStep(StepActivitiesCuration, activities),
		workflow.NewStep(StepLocalInsights, insider),
		workflow.NewStep(StepBudgetOptimization, budget),
		workflow.NewStep(StepFinalItinerary, booking),
	}
}
