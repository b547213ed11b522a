package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/me/shopfloor/internal/store"
	"github.com/me/shopfloor/internal/validate"
	"github.com/me/shopfloor/pkg/model"
)

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	prob, apiErr := s.readProblem(r)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	if alg := r.URL.Query().Get("algorithm"); alg != "" {
		prob.Config.Algorithm = model.Algorithm(alg)
	}

	jobErrs, windowErrs := checkProblem(prob)
	if len(jobErrs) > 0 || len(windowErrs) > 0 {
		details := model.FieldErrors(jobErrs)
		for _, msg := range windowErrs {
			details = append(details, model.FieldError{Field: "maintenance", Message: msg})
		}
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("problem failed validation", details...))
		return
	}

	ctx := r.Context()
	if s.config.ScheduleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ScheduleTimeout)
		defer cancel()
	}

	outcome, err := s.engine.ScheduleJobs(ctx, prob.Jobs, prob.Config)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("scheduling timed out", "request_id", reqID,
				"algorithm", prob.Config.Algorithm, "timeout", s.config.ScheduleTimeout)
			respondError(w, reqID, http.StatusServiceUnavailable, &model.APIError{
				Code:    model.ErrTimeout,
				Message: fmt.Sprintf("scheduling did not finish within %s", s.config.ScheduleTimeout),
			})
			return
		}
		if errors.Is(err, context.Canceled) {
			respondInternal(w, reqID, err)
			return
		}
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}

	violations := validate.Schedule(outcome.Result, prob.Config.ActiveWindows())
	if len(violations) > 0 {
		s.logger.Error("produced schedule failed validation",
			"request_id", reqID, "violations", len(violations), "first", violations[0])
	}

	run := &model.Run{
		ID:         runID(),
		Name:       prob.Name,
		Algorithm:  outcome.Algorithm,
		Problem:    *prob,
		Outcome:    *outcome,
		Violations: violations,
		CreatedAt:  time.Now().UTC(),
	}
	if run.Violations == nil {
		run.Violations = []string{}
	}

	if r.URL.Query().Get("dry_run") == "true" {
		respondOK(w, reqID, run)
		return
	}

	if err := s.store.CreateRun(r.Context(), run); err != nil {
		respondInternal(w, reqID, err)
		return
	}
	s.logger.Info("run created", "id", run.ID, "algorithm", run.Algorithm,
		"makespan", outcome.Result.Makespan, "infeasible", outcome.Infeasible)

	if outcome.Infeasible {
		details := make([]model.FieldError, 0, len(outcome.Remaining))
		for _, id := range outcome.Remaining {
			details = append(details, model.FieldError{Field: "tasks." + id, Message: "task can never become ready"})
		}
		respondJSON(w, http.StatusUnprocessableEntity, reqID, run, nil, &model.APIError{
			Code:    model.ErrInfeasible,
			Message: fmt.Sprintf("%d task(s) could not be scheduled; partial run stored as %s", len(outcome.Remaining), run.ID),
			Details: details,
		})
		return
	}

	respondCreated(w, reqID, run)
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts := listOptions(r)
	runs, total, err := s.store.ListRuns(r.Context(), opts)
	if err != nil {
		respondInternal(w, reqID, err)
		return
	}

	respondList(w, reqID, runs, opts.Page(total))
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		respondInternal(w, reqID, err)
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("schedule", id))
		return
	}
	respondOK(w, reqID, run)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteRun(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("schedule", id))
			return
		}
		respondInternal(w, reqID, err)
		return
	}
	s.logger.Info("run deleted", "id", id)
	respondOK(w, reqID, map[string]any{"id": id, "deleted": true})
}
