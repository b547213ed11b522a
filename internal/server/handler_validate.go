package server

import (
	"encoding/json"
	"net/http"

	"github.com/me/shopfloor/internal/validate"
	"github.com/me/shopfloor/pkg/model"
)

// jobsReport is the result of pre-flight validation.
type jobsReport struct {
	Valid             bool             `json:"valid"`
	Errors            []model.JobError `json:"errors"`
	MaintenanceErrors []string         `json:"maintenance_errors"`
}

// scheduleRequest is the body accepted by POST /validate/schedule.
type scheduleRequest struct {
	Schedule           []model.Task              `json:"schedule"`
	Makespan           int                       `json:"makespan"`
	MaintenanceWindows []model.MaintenanceWindow `json:"maintenanceWindows"`
}

// scheduleReport is the result of schedule validation.
type scheduleReport struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
}

func (s *Server) handleValidateJobs(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	prob, apiErr := s.readProblem(r)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

	jobErrs, windowErrs := checkProblem(prob)
	respondOK(w, reqID, jobsReport{
		Valid:             len(jobErrs) == 0 && len(windowErrs) == 0,
		Errors:            jobErrs,
		MaintenanceErrors: windowErrs,
	})
}

func (s *Server) handleValidateSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req scheduleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}

	violations := validate.Schedule(model.ScheduleResult{Schedule: req.Schedule, Makespan: req.Makespan}, req.MaintenanceWindows)
	if violations == nil {
		violations = []string{}
	}
	respondOK(w, reqID, scheduleReport{Valid: len(violations) == 0, Violations: violations})
}

// readProblem parses the request body as a problem document.
func (s *Server) readProblem(r *http.Request) (*model.Problem, *model.APIError) {
	data, err := readBody(r)
	if err != nil {
		return nil, model.NewValidationError(err.Error())
	}
	prob, err := s.parser.Parse(data)
	if err != nil {
		return nil, model.NewValidationError("Invalid problem document: " + err.Error())
	}
	return prob, nil
}

// checkProblem runs pre-flight validation on jobs and maintenance windows.
// Both results are non-nil.
func checkProblem(prob *model.Problem) ([]model.JobError, []string) {
	jobErrs := validate.Jobs(prob.Jobs)
	if jobErrs == nil {
		jobErrs = []model.JobError{}
	}
	windowErrs := validate.MaintenanceWindows(prob.Config.MaintenanceWindows)
	if windowErrs == nil {
		windowErrs = []string{}
	}
	return jobErrs, windowErrs
}
