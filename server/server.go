// Package server exposes the planning pipeline over HTTP: POST /runs starts
// a run, GET /runs/{id} returns its audit record.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hupe1980/tripflow/core"
	"github.com/hupe1980/tripflow/logging"
	"github.com/hupe1980/tripflow/runstore"
	"github.com/hupe1980/tripflow/travel"
	"github.com/hupe1980/tripflow/workflow"
)

// Options configures a Server.
type Options struct {
	// Logger defaults to a slog text logger.
	Logger logging.Logger
}

// Server routes HTTP requests into a travel planner.
type Server struct {
	planner *travel.Planner
	logger  logging.Logger
	router  chi.Router
}

// New creates a Server around a planner.
func New(planner *travel.Planner, optFns ...func(o *Options)) *Server {
	opts := Options{}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewDefaultSlogLogger()
	}

	s := &Server{
		planner: planner,
		logger:  opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/runs", s.handleCreateRun)
	r.Get("/runs/{id}", s.handleGetRun)
	r.Get("/healthz", s.handleHealth)

	s.router = r

	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("server.listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

type runResponse struct {
	RunID string `json:"run_id"`
	Final string `json:"final,omitempty"`
}

type errorResponse struct {
	Error      string                `json:"error"`
	RunID      string                `json:"run_id,omitempty"`
	Stage      string                `json:"stage,omitempty"`
	Step       string                `json:"step,omitempty"`
	Violations []core.FieldViolation `json:"violations,omitempty"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cannot read request body"})
		return
	}

	res, err := s.planner.PlanJSON(r.Context(), raw)
	if err != nil {
		s.writeRunError(w, res, err)
		return
	}

	writeJSON(w, http.StatusOK, runResponse{RunID: res.RunID, Final: res.Final})
}

// writeRunError maps pipeline errors onto HTTP statuses: a rejected input is
// the caller's fault, a stage failure means an upstream capability broke.
func (s *Server) writeRunError(w http.ResponseWriter, res *workflow.RunResult, err error) {
	runID := ""
	if res != nil {
		runID = res.RunID
	}

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:      verr.Error(),
			Violations: verr.Violations,
		})
		return
	}

	var sf *core.StageFailure
	if errors.As(err, &sf) {
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error: sf.Error(),
			RunID: runID,
			Stage: sf.Stage,
			Step:  sf.Step,
		})
		return
	}

	s.logger.Error("server.run_failed", "run_id", runID, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "run failed", RunID: runID})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.planner.Store().Get(id)
	if err != nil {
		if errors.Is(err, runstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "run not found", RunID: id})
			return
		}

		s.logger.Error("server.get_run_failed", "run_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "cannot load run"})
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
