package model

import "fmt"

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrInfeasible ErrorCode = "INFEASIBLE"
	ErrTimeout    ErrorCode = "TIMEOUT"
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
)

// APIError is a structured error returned by the Shopfloor API.
type APIError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// NewValidationError creates an APIError with validation details.
func NewValidationError(msg string, details ...FieldError) *APIError {
	return &APIError{Code: ErrValidation, Message: msg, Details: details}
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}

// JobError is a pre-flight validation finding attributed to a job and,
// optionally, one of its tasks. JobID is -1 for problem-level findings.
type JobError struct {
	JobID   int    `json:"jobId"`
	TaskID  string `json:"taskId,omitempty"`
	Message string `json:"message"`
}

func (e JobError) String() string {
	if e.JobID < 0 {
		return e.Message
	}
	if e.TaskID == "" {
		return fmt.Sprintf("job %d: %s", e.JobID, e.Message)
	}
	return fmt.Sprintf("job %d task %s: %s", e.JobID, e.TaskID, e.Message)
}

// FieldErrors converts job validation findings into API field errors.
func FieldErrors(errs []JobError) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		fe := FieldError{Message: e.Message}
		switch {
		case e.JobID < 0:
			fe.Field = "jobs"
		case e.TaskID == "":
			fe.Field = fmt.Sprintf("jobs.%d", e.JobID)
		default:
			fe.Field = fmt.Sprintf("jobs.%d.tasks.%s", e.JobID, e.TaskID)
		}
		out = append(out, fe)
	}
	return out
}

// InvalidTransitionError is returned when a task state transition is invalid.
type InvalidTransitionError struct {
	TaskID string
	From   TaskState
	To     TaskState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid task state transition: %s → %s (task %s)", e.From, e.To, e.TaskID)
}
