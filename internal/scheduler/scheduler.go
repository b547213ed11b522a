// Package scheduler implements the greedy dispatch loop: among tasks whose
// job predecessors are committed, it repeatedly commits the one with the
// globally earliest feasible start.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/me/shopfloor/internal/logging"
	"github.com/me/shopfloor/internal/policy"
	"github.com/me/shopfloor/internal/timeline"
	"github.com/me/shopfloor/pkg/model"
)

// Dispatcher runs one greedy pass over a pre-ordered pool. It holds no
// per-run state and may be shared between goroutines.
type Dispatcher struct {
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher with the given logger.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{logger: logging.ForComponent(logger, "dispatcher")}
}

// taskKey identifies a task by its owning job and its job-local ID.
type taskKey struct {
	jobID  int
	taskID string
}

// record is the per-run scheduling state of one pool entry.
type record struct {
	entry policy.Entry
	state model.TaskState
}

func (r *record) transition(next model.TaskState) error {
	if !r.state.CanTransitionTo(next) {
		return &model.InvalidTransitionError{TaskID: r.entry.Task.ID, From: r.state, To: next}
	}
	r.state = next
	return nil
}

// run holds the mutable state of one Dispatch call.
type run struct {
	windows   []model.MaintenanceWindow
	schedule  []model.Task
	committed map[taskKey]bool
	jobEnd    map[int]int
}

// ready reports whether every task before e in its job is committed.
// Entries whose job could not be resolved never become ready.
func (r *run) ready(e policy.Entry) bool {
	if e.Job == nil || e.Index < 0 {
		return false
	}
	for _, pred := range e.Job.Tasks[:e.Index] {
		if !r.committed[taskKey{e.Job.ID, pred.ID}] {
			return false
		}
	}
	return true
}

// Dispatch assigns start times to every entry of pool, which must already be
// ordered by a policy; the order only breaks ties between equal starts.
// Windows are treated as fixed occupied intervals.
//
// When some tasks can never become ready, Dispatch returns the partial
// schedule and an *InfeasibleError listing them. A cancelled ctx returns the
// partial schedule and ctx.Err().
func (d *Dispatcher) Dispatch(ctx context.Context, pool []policy.Entry, windows []model.MaintenanceWindow) (model.ScheduleResult, error) {
	records := make([]*record, len(pool))
	for i, e := range pool {
		records[i] = &record{entry: e, state: model.TaskStatePending}
	}

	r := &run{
		windows:   windows,
		schedule:  make([]model.Task, 0, len(pool)),
		committed: make(map[taskKey]bool, len(pool)),
		jobEnd:    make(map[int]int),
	}

	pending := records
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return result(r.schedule), err
		}

		best, bestStart := -1, 0
		for i, rec := range pending {
			if !r.ready(rec.entry) {
				continue
			}
			if err := rec.transition(model.TaskStateReady); err != nil {
				return result(r.schedule), err
			}
			start := timeline.Earliest(rec.entry.Task, r.schedule, r.windows, r.jobEnd[rec.entry.Job.ID])
			if best < 0 || start < bestStart {
				best, bestStart = i, start
			}
		}

		if best < 0 {
			stuck := make([]string, len(pending))
			for i, rec := range pending {
				stuck[i] = rec.entry.Task.ID
			}
			d.logger.Warn("no ready task; precedence cannot be satisfied",
				"committed", len(r.schedule), "remaining", len(stuck))
			return result(r.schedule), &InfeasibleError{Remaining: stuck}
		}

		rec := pending[best]
		if err := rec.transition(model.TaskStateCommitted); err != nil {
			return result(r.schedule), err
		}
		task := rec.entry.Task.WithStart(bestStart)
		r.schedule = append(r.schedule, task)
		r.committed[taskKey{rec.entry.Job.ID, task.ID}] = true
		r.jobEnd[rec.entry.Job.ID] = task.End()

		d.logger.Debug("task committed",
			"task_id", task.ID, "job_id", task.JobID, "machine_id", task.MachineID,
			"start", bestStart, "end", task.End())

		pending = append(pending[:best:best], pending[best+1:]...)
	}

	return result(r.schedule), nil
}

func result(schedule []model.Task) model.ScheduleResult {
	return model.ScheduleResult{Schedule: schedule, Makespan: Makespan(schedule)}
}

// Makespan returns the latest end time in schedule, or 0 when it is empty.
func Makespan(schedule []model.Task) int {
	makespan := 0
	for _, t := range schedule {
		if end := t.End(); end > makespan {
			makespan = end
		}
	}
	return makespan
}

// InfeasibleError reports tasks that could never become ready because their
// job predecessors were never committed or their job could not be found.
type InfeasibleError struct {
	Remaining []string
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("infeasible precedence: %d task(s) can never become ready: %v", len(e.Remaining), e.Remaining)
}
