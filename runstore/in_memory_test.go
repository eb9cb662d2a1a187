package runstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tripflow/core"
)

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

func TestInMemoryStoreLifecycle(t *testing.T) {
	store := NewInMemoryStore()

	id, err := store.Create(testInput())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, store.AppendTransition(id, core.StageTransition{Stage: "Independent Research", Status: "started"}))
	require.NoError(t, store.AppendStepResult(id, core.StepResult{Step: "Weather Research", Status: core.StepStatusSuccess, Payload: "sunny"}))
	require.NoError(t, store.AppendTransition(id, core.StageTransition{Stage: "Independent Research", Status: "completed"}))
	require.NoError(t, store.Complete(id, "final plan"))

	rec, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusCompleted, rec.Status)
	assert.Equal(t, "final plan", rec.Final)
	require.Len(t, rec.Steps, 1)
	require.Len(t, rec.Transitions, 2)
	assert.Equal(t, "Lisbon, Portugal", rec.Input.Destination)
}

func TestInMemoryStoreTerminalIsImmutable(t *testing.T) {
	store := NewInMemoryStore()

	id, err := store.Create(testInput())
	require.NoError(t, err)
	require.NoError(t, store.Complete(id, "done"))

	assert.ErrorIs(t, store.Complete(id, "again"), ErrTerminal)
	assert.ErrorIs(t, store.Fail(id, "late failure"), ErrTerminal)
	assert.ErrorIs(t, store.AppendStepResult(id, core.StepResult{Step: "x"}), ErrTerminal)
	assert.ErrorIs(t, store.AppendTransition(id, core.StageTransition{Stage: "x"}), ErrTerminal)

	rec, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusCompleted, rec.Status)
	assert.Equal(t, "done", rec.Final)
}

func TestInMemoryStoreFail(t *testing.T) {
	store := NewInMemoryStore()

	id, err := store.Create(testInput())
	require.NoError(t, err)
	require.NoError(t, store.Fail(id, "stage Independent Research failed"))

	rec, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusFailed, rec.Status)
	assert.Equal(t, "stage Independent Research failed", rec.FailureReason)
}

func TestInMemoryStoreUnknownRun(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Complete("missing", ""), ErrNotFound)
	assert.ErrorIs(t, store.Fail("missing", ""), ErrNotFound)
}

func TestInMemoryStoreGetReturnsClone(t *testing.T) {
	store := NewInMemoryStore()

	id, err := store.Create(testInput())
	require.NoError(t, err)
	require.NoError(t, store.AppendStepResult(id, core.StepResult{Step: "Weather Research", Payload: "sunny"}))

	rec, err := store.Get(id)
	require.NoError(t, err)

	rec.Steps[0].Payload = "mutated"
	rec.Final = "mutated"

	fresh, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "sunny", fresh.Steps[0].Payload)
	assert.Empty(t, fresh.Final)
}
