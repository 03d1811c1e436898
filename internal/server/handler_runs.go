package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/me/schedsim/internal/driver"
	"github.com/me/schedsim/internal/workload"
	"github.com/me/schedsim/pkg/model"
)

// createRunRequest is the POST /runs payload.
type createRunRequest struct {
	Scheduler string `json:"scheduler"` // registry key, e.g. "srtf"
	Workload  string `json:"workload"`  // workload document (YAML)
}

// handleCreateRun executes a workload under the named scheduler and persists
// the run with its trace. Simulations are tick-bounded and cheap, so the run
// executes synchronously inside the request.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid JSON body"))
		return
	}

	sched, err := s.registry.Get(req.Scheduler)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError(err.Error(), model.FieldError{Field: "scheduler", Message: "unknown scheduler key"}))
		return
	}

	wl, err := workload.Parse([]byte(req.Workload))
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError(err.Error(), model.FieldError{Field: "workload", Message: "invalid workload"}))
		return
	}

	run := &model.Run{
		ID:        "run_" + uuid.New().String(),
		Scheduler: req.Scheduler,
		Workload:  req.Workload,
		State:     model.RunStatePending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateRun(r.Context(), run); err != nil {
		s.logger.Error("create run", "run_id", run.ID, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to persist run"})
		return
	}

	run.State = model.RunStateRunning
	if err := s.store.UpdateRun(r.Context(), run); err != nil {
		s.logger.Error("activate run", "run_id", run.ID, "error", err)
	}

	drv := driver.New(wl, sched, driver.Config{MaxTicks: s.config.MaxTicks}, s.logger)
	m, runErr := drv.Run(r.Context())

	now := time.Now().UTC()
	run.CompletedAt = &now
	if runErr != nil {
		run.State = model.RunStateFailed
		run.Error = runErr.Error()
		s.logger.Info("run failed", "run_id", run.ID, "error", runErr)
	} else {
		run.State = model.RunStateCompleted
		run.Metrics = m
		s.logger.Info("run completed", "run_id", run.ID, "scheduler", req.Scheduler, "ticks", drv.Ticks())
	}

	if err := s.store.UpdateRun(r.Context(), run); err != nil {
		s.logger.Error("finalize run", "run_id", run.ID, "error", err)
	}
	if err := s.store.AppendTrace(r.Context(), run.ID, drv.Trace()); err != nil {
		s.logger.Error("persist trace", "run_id", run.ID, "error", err)
	}

	respondCreated(w, reqID, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.logger.Error("get run", "run_id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to load run"})
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("run", id))
		return
	}
	respondOK(w, reqID, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	opts := parseListOptions(r)

	runs, total, err := s.store.ListRuns(r.Context(), opts)
	if err != nil {
		s.logger.Error("list runs", "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to list runs"})
		return
	}

	respondList(w, reqID, runs, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(runs) < total,
	})
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.logger.Error("get run for delete", "run_id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to load run"})
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("run", id))
		return
	}

	if err := s.store.DeleteRun(r.Context(), id); err != nil {
		s.logger.Error("delete run", "run_id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to delete run"})
		return
	}
	respondOK(w, reqID, map[string]string{"id": id, "deleted": "true"})
}

func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	opts := parseListOptions(r)

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.logger.Error("get run for trace", "run_id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to load run"})
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("run", id))
		return
	}

	events, total, err := s.store.ListTrace(r.Context(), id, opts)
	if err != nil {
		s.logger.Error("list trace", "run_id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to load trace"})
		return
	}

	respondList(w, reqID, events, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(events) < total,
	})
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.logger.Error("get run for metrics", "run_id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to load run"})
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("run", id))
		return
	}
	if run.Metrics == nil {
		respondError(w, reqID, http.StatusConflict,
			&model.APIError{Code: model.ErrConflict, Message: "run has no metrics (state " + run.State.String() + ")"})
		return
	}
	respondOK(w, reqID, run.Metrics)
}

// parseListOptions reads limit/offset/state query parameters.
func parseListOptions(r *http.Request) model.ListOptions {
	opts := model.DefaultListOptions()
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}
	opts.State = r.URL.Query().Get("state")
	opts.Clamp()
	return opts
}
