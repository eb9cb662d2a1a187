package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tripflow/core"
	"github.com/hupe1980/tripflow/runstore"
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

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSqliteStoreLifecycle(t *testing.T) {
	store := openTestStore(t)

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
	assert.Equal(t, "Lisbon, Portugal", rec.Input.Destination)

	require.Len(t, rec.Steps, 1)
	assert.Equal(t, "Weather Research", rec.Steps[0].Step)
	assert.Equal(t, "sunny", rec.Steps[0].Payload)

	require.Len(t, rec.Transitions, 2)
	assert.Equal(t, "started", rec.Transitions[0].Status)
	assert.Equal(t, "completed", rec.Transitions[1].Status)
}

func TestSqliteStoreTerminalIsImmutable(t *testing.T) {
	store := openTestStore(t)

	id, err := store.Create(testInput())
	require.NoError(t, err)
	require.NoError(t, store.Fail(id, "capability down"))

	assert.ErrorIs(t, store.Complete(id, "late"), runstore.ErrTerminal)
	assert.ErrorIs(t, store.Fail(id, "again"), runstore.ErrTerminal)
	assert.ErrorIs(t, store.AppendStepResult(id, core.StepResult{Step: "x"}), runstore.ErrTerminal)
	assert.ErrorIs(t, store.AppendTransition(id, core.StageTransition{Stage: "x"}), runstore.ErrTerminal)

	rec, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusFailed, rec.Status)
	assert.Equal(t, "capability down", rec.FailureReason)
}

func TestSqliteStoreUnknownRun(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, runstore.ErrNotFound)
	assert.ErrorIs(t, store.Complete("missing", ""), runstore.ErrNotFound)
	assert.ErrorIs(t, store.AppendStepResult("missing", core.StepResult{}), runstore.ErrNotFound)
}

func TestSqliteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	store, err := Open(path)
	require.NoError(t, err)

	id, err := store.Create(testInput())
	require.NoError(t, err)
	require.NoError(t, store.Complete(id, "durable plan"))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	rec, err := reopened.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "durable plan", rec.Final)
	assert.Equal(t, core.RunStatusCompleted, rec.Status)
}
