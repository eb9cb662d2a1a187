package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tripflow/core"
	"github.com/hupe1980/tripflow/logging"
	"github.com/hupe1980/tripflow/model"
	"github.com/hupe1980/tripflow/runstore"
	"github.com/hupe1980/tripflow/travel"
)

const validBody = `{
	"destination": "Lisbon, Portugal",
	"travel_purpose": "leisure",
	"travel_companions": "couple",
	"travel_dates": "2026-10-05 to 2026-10-12",
	"departure_location": "Berlin",
	"date_flexibility": "slightly flexible",
	"accommodation_type": "hotel",
	"budget": "$3000 USD",
	"interests_activities": ["food tours"],
	"travel_style": "mid-range",
	"duration": "7 days",
	"budget_flexibility": "moderate"
}`

func newTestServer(llm model.Model) (*Server, *runstore.InMemoryStore) {
	store := runstore.NewInMemoryStore()

	planner := travel.NewPlanner(llm, func(o *travel.Options) {
		o.RunStore = store
		o.Logger = logging.NoOpLogger{}
	})

	srv := New(planner, func(o *Options) {
		o.Logger = logging.NoOpLogger{}
	})

	return srv, store
}

func TestCreateRun(t *testing.T) {
	srv, store := newTestServer(model.NewMockModel("test"))

	req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(validBody))
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RunID string `json:"run_id"`
		Final string `json:"final"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.NotEmpty(t, resp.Final)

	rec, err := store.Get(resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusCompleted, rec.Status)
}

func TestCreateRunRejectsInvalidInput(t *testing.T) {
	srv, _ := newTestServer(model.NewMockModel("test"))

	req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(`{"destination": "Lisbon"}`))
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error      string `json:"error"`
		Violations []struct {
			Field string `json:"field"`
		} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Violations)
}

func TestCreateRunStageFailure(t *testing.T) {
	llm := model.NewMockModel("test")
	llm.SetError(errors.New("capability unreachable"))

	srv, _ := newTestServer(llm)

	req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(validBody))
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp struct {
		RunID string `json:"run_id"`
		Stage string `json:"stage"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, travel.StageIndependentResearch, resp.Stage)
	assert.NotEmpty(t, resp.RunID)
}

func TestGetRun(t *testing.T) {
	srv, store := newTestServer(model.NewMockModel("test"))

	id, err := store.Create(core.TravelRequest{
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
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+id, nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var rec core.RunRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, core.RunStatusRunning, rec.Status)
}

func TestGetRunNotFound(t *testing.T) {
	srv, _ := newTestServer(model.NewMockModel("test"))

	req := httptest.NewRequest(http.MethodGet, "/runs/no-such-run", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(model.NewMockModel("test"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
