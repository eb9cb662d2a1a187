// Package tripflow is a multi-agent travel planning pipeline. Specialist
// agents research weather, destination, accommodation and transport in
// parallel, then dependent stages curate activities, add local insight,
// optimize the budget and compile the final itinerary. The root package
// re-exports the common entry points; the subpackages hold the machinery.
package tripflow

import (
	"context"

	"github.com/hupe1980/tripflow/core"
	"github.com/hupe1980/tripflow/model"
	"github.com/hupe1980/tripflow/travel"
	"github.com/hupe1980/tripflow/workflow"
)

// TravelRequest is the validated pipeline input.
type TravelRequest = core.TravelRequest

// RunResult is the outcome of a planning run.
type RunResult = workflow.RunResult

// Planner is the assembled planning pipeline.
type Planner = travel.Planner

// PlannerOptions configures NewPlanner.
type PlannerOptions = travel.Options

// NewPlanner assembles the pipeline around a reasoning capability.
func NewPlanner(llm model.Model, optFns ...func(o *travel.Options)) *travel.Planner {
	return travel.NewPlanner(llm, optFns...)
}

// Plan runs a single request through a freshly assembled pipeline. For
// repeated runs build one Planner and reuse it.
func Plan(ctx context.Context, llm model.Model, req core.TravelRequest) (*workflow.RunResult, error) {
	return travel.NewPlanner(llm).Plan(ctx, req)
}
