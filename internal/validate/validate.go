// Package validate provides pre-flight checks on scheduling inputs and an
// independent post-flight check on committed schedules. It never modifies
// its arguments.
package validate

import (
	"fmt"
	"sort"

	"github.com/me/shopfloor/internal/timeline"
	"github.com/me/shopfloor/pkg/model"
)

// Jobs checks the structure of a job list before scheduling: at least one
// job, unique job ids, at least one task per job, unique task ids within a
// job, task jobId matching its job, non-negative machine ids and positive
// durations. A job with no tasks reports only that finding.
func Jobs(jobs []model.Job) []model.JobError {
	if len(jobs) == 0 {
		return []model.JobError{{JobID: -1, Message: "At least one job is required"}}
	}

	var errs []model.JobError
	seenJobs := make(map[int]bool, len(jobs))
	for _, job := range jobs {
		if seenJobs[job.ID] {
			errs = append(errs, model.JobError{JobID: job.ID, Message: "Job ID must be unique"})
		}
		seenJobs[job.ID] = true

		if len(job.Tasks) == 0 {
			errs = append(errs, model.JobError{JobID: job.ID, Message: "Job must have at least one task"})
			continue
		}

		seenTasks := make(map[string]bool, len(job.Tasks))
		for _, task := range job.Tasks {
			if seenTasks[task.ID] {
				errs = append(errs, model.JobError{JobID: job.ID, TaskID: task.ID, Message: "Task ID must be unique within its job"})
			}
			seenTasks[task.ID] = true

			if task.JobID != job.ID {
				errs = append(errs, model.JobError{
					JobID:   job.ID,
					TaskID:  task.ID,
					Message: fmt.Sprintf("Task job ID %d does not match job %d", task.JobID, job.ID),
				})
			}
			if task.MachineID < 0 {
				errs = append(errs, model.JobError{JobID: job.ID, TaskID: task.ID, Message: "Machine ID must be non-negative"})
			}
			if task.Duration <= 0 {
				errs = append(errs, model.JobError{JobID: job.ID, TaskID: task.ID, Message: "Duration must be positive"})
			}
		}
	}
	return errs
}

// MaintenanceWindows checks each window's machine id, start time and
// duration. Messages use 1-based window positions.
func MaintenanceWindows(windows []model.MaintenanceWindow) []string {
	var errs []string
	for i, w := range windows {
		if w.MachineID < 0 {
			errs = append(errs, fmt.Sprintf("Maintenance window %d: Invalid machine ID", i+1))
		}
		if w.StartTime < 0 {
			errs = append(errs, fmt.Sprintf("Maintenance window %d: Invalid start time", i+1))
		}
		if w.Duration <= 0 {
			errs = append(errs, fmt.Sprintf("Maintenance window %d: Invalid duration", i+1))
		}
	}
	return errs
}

// Schedule re-checks a committed schedule and returns one message per
// violation: tasks without a start time, overlapping intervals on a machine
// (tasks and the given maintenance windows), and tasks of a job that start
// before the previous one finishes. An empty result means the schedule is
// conflict-free and precedence-correct. Job numbers in messages are 1-based.
func Schedule(result model.ScheduleResult, windows []model.MaintenanceWindow) []string {
	var errs []string

	var placed []model.Task
	for _, task := range result.Schedule {
		if !task.Scheduled() {
			errs = append(errs, fmt.Sprintf("Task %s (Job %d) has no start time", task.ID, task.JobID+1))
			continue
		}
		placed = append(placed, task)
	}

	for _, machine := range timeline.Machines(placed, windows) {
		slots := timeline.Occupancy(machine, placed, windows)
		for i := 0; i+1 < len(slots); i++ {
			cur, next := slots[i], slots[i+1]
			if cur.End > next.Start {
				errs = append(errs, fmt.Sprintf("Overlap detected on Machine %d: %s overlaps with %s",
					machine, describe(cur), describe(next)))
			}
		}
	}

	byJob := make(map[int][]model.Task)
	for _, task := range placed {
		byJob[task.JobID] = append(byJob[task.JobID], task)
	}
	jobIDs := make([]int, 0, len(byJob))
	for id := range byJob {
		jobIDs = append(jobIDs, id)
	}
	sort.Ints(jobIDs)

	for _, id := range jobIDs {
		tasks := byJob[id]
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Start() < tasks[j].Start() })
		for i := 0; i+1 < len(tasks); i++ {
			cur, next := tasks[i], tasks[i+1]
			if cur.End() > next.Start() {
				errs = append(errs, fmt.Sprintf(
					"Invalid task sequence in Job %d: Task on Machine %d must complete before task on Machine %d can start",
					id+1, cur.MachineID, next.MachineID))
			}
		}
	}

	return errs
}

func describe(iv timeline.Interval) string {
	if iv.Kind == timeline.KindMaintenance {
		return fmt.Sprintf("Maintenance (%d-%d)", iv.Start, iv.End)
	}
	return fmt.Sprintf("Job %d (%d-%d)", iv.JobID+1, iv.Start, iv.End)
}
