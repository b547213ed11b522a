package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/me/shopfloor/pkg/model"
)

// printOutcome renders a schedule and its metrics as human-readable text.
func printOutcome(w io.Writer, outcome *model.ScheduleOutcome) {
	fmt.Fprintf(w, "Algorithm: %s\n", outcome.Algorithm)
	fmt.Fprintf(w, "Makespan:  %d\n", outcome.Result.Makespan)
	if outcome.Infeasible {
		fmt.Fprintf(w, "%s: %d task(s) could not be scheduled: %s\n",
			boldRed("INFEASIBLE"), len(outcome.Remaining), strings.Join(outcome.Remaining, ", "))
	}

	printSchedule(w, outcome.Result.Schedule)

	m := outcome.Metrics
	if len(m.MachineUtilization) > 0 {
		fmt.Fprintln(w, "\nMachine utilization:")
		machines := make([]int, 0, len(m.MachineUtilization))
		for id := range m.MachineUtilization {
			machines = append(machines, id)
		}
		sort.Ints(machines)
		for _, id := range machines {
			fmt.Fprintf(w, "  M%-4d %6.1f%%\n", id, m.MachineUtilization[id])
		}
	}
	fmt.Fprintf(w, "\nAverage wait: %.2f\n", m.AverageWaitTime)
	fmt.Fprintf(w, "Longest job:   %s\n", taskIDs(m.LongestJob))
	fmt.Fprintf(w, "Critical path: %s\n", taskIDs(m.CriticalPath))

	if len(m.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, rec := range m.Recommendations {
			fmt.Fprintf(w, "  %s %s (~%d%%)\n", recommendationLabel(rec.Type), bold(rec.Title), rec.PotentialImprovement)
			fmt.Fprintf(w, "      %s\n", dim(rec.Description))
		}
	}

	if p := m.Prediction; p != nil {
		fmt.Fprintf(w, "\nPredicted completion: %s (confidence %d%%)\n",
			p.CompletionTime.Local().Format(time.RFC3339), p.Confidence)
		for _, risk := range p.RiskFactors {
			fmt.Fprintf(w, "  %s %s\n", yellow("risk:"), risk)
		}
	}
}

// printSchedule renders tasks ordered by start time, then machine.
func printSchedule(w io.Writer, schedule []model.Task) {
	if len(schedule) == 0 {
		fmt.Fprintln(w, "\nNo tasks scheduled.")
		return
	}
	tasks := append([]model.Task(nil), schedule...)
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Start() != tasks[j].Start() {
			return tasks[i].Start() < tasks[j].Start()
		}
		return tasks[i].MachineID < tasks[j].MachineID
	})

	fmt.Fprintf(w, "\n%-12s  %-5s  %-8s  %-6s  %s\n", "TASK", "JOB", "MACHINE", "START", "END")
	fmt.Fprintf(w, "%-12s  %-5s  %-8s  %-6s  %s\n", "----", "---", "-------", "-----", "---")
	for _, t := range tasks {
		fmt.Fprintf(w, "%-12s  %-5d  %-8d  %-6d  %d\n", t.ID, t.JobID, t.MachineID, t.Start(), t.End())
	}
}

func taskIDs(tasks []model.Task) string {
	if len(tasks) == 0 {
		return "-"
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return strings.Join(ids, " -> ")
}
