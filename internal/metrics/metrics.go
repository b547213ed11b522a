// Package metrics derives quality measures from a committed schedule.
package metrics

import (
	"sort"

	"github.com/me/shopfloor/pkg/model"
)

// Compute returns all metrics for schedule. windows should be the
// maintenance windows that were honoured during dispatch.
func Compute(schedule []model.Task, makespan int, windows []model.MaintenanceWindow) model.ScheduleMetrics {
	return model.ScheduleMetrics{
		MachineUtilization: Utilization(schedule, windows, makespan),
		AverageWaitTime:    AverageWait(schedule),
		LongestJob:         LongestJob(schedule),
		CriticalPath:       CriticalPath(schedule),
		Recommendations:    Recommend(schedule, makespan),
	}
}

// Utilization returns, per machine, the percentage of the makespan occupied
// by tasks and maintenance. Every machine maps to 0 when makespan is 0.
func Utilization(schedule []model.Task, windows []model.MaintenanceWindow, makespan int) map[int]float64 {
	busy := make(map[int]int)
	for _, t := range schedule {
		busy[t.MachineID] += t.Duration
	}
	for _, w := range windows {
		busy[w.MachineID] += w.Duration
	}

	util := make(map[int]float64, len(busy))
	for machine, work := range busy {
		if makespan > 0 {
			util[machine] = float64(work) / float64(makespan) * 100
		} else {
			util[machine] = 0
		}
	}
	return util
}

// AverageWait returns the mean idle time between consecutive tasks of the
// same job, taken in commit order. Negative gaps count as 0.
func AverageWait(schedule []model.Task) float64 {
	total, n := 0, 0
	for _, tasks := range byJob(schedule) {
		for i := 1; i < len(tasks); i++ {
			wait := tasks[i].Start() - tasks[i-1].End()
			if wait < 0 {
				wait = 0
			}
			total += wait
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

// LongestJob returns the tasks of the job with the largest total processing
// time, ordered by start. Ties keep the lowest job id.
func LongestJob(schedule []model.Task) []model.Task {
	groups := byJob(schedule)
	jobIDs := make([]int, 0, len(groups))
	for id := range groups {
		jobIDs = append(jobIDs, id)
	}
	sort.Ints(jobIDs)

	longest, longestSum := []model.Task{}, -1
	for _, id := range jobIDs {
		tasks := append([]model.Task(nil), groups[id]...)
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Start() < tasks[j].Start() })
		sum := 0
		for _, t := range tasks {
			sum += t.Duration
		}
		if sum > longestSum {
			longest, longestSum = tasks, sum
		}
	}
	return longest
}

// byJob groups schedule by JobID, keeping commit order within each group.
func byJob(schedule []model.Task) map[int][]model.Task {
	groups := make(map[int][]model.Task)
	for _, t := range schedule {
		groups[t.JobID] = append(groups[t.JobID], t)
	}
	return groups
}
