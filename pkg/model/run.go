package model

import "time"

// Problem is a complete scheduling input: jobs plus configuration.
type Problem struct {
	Name   string         `json:"name,omitempty" yaml:"name,omitempty"`
	Jobs   []Job          `json:"jobs" yaml:"jobs"`
	Config ScheduleConfig `json:"config" yaml:"config"`
}

// Run is a persisted scheduling invocation.
type Run struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Algorithm  Algorithm       `json:"algorithm"`
	Problem    Problem         `json:"problem"`
	Outcome    ScheduleOutcome `json:"outcome"`
	Violations []string        `json:"violations"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RunSummary is the list view of a Run.
type RunSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Algorithm  Algorithm `json:"algorithm"`
	TaskCount  int       `json:"task_count"`
	Makespan   int       `json:"makespan"`
	Infeasible bool      `json:"infeasible"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summary returns the list view of r.
func (r *Run) Summary() RunSummary {
	return RunSummary{
		ID:         r.ID,
		Name:       r.Name,
		Algorithm:  r.Algorithm,
		TaskCount:  len(r.Outcome.Result.Schedule),
		Makespan:   r.Outcome.Result.Makespan,
		Infeasible: r.Outcome.Infeasible,
		CreatedAt:  r.CreatedAt,
	}
}
