package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/me/shopfloor/pkg/model"
)

const (
	imbalanceRatio    = 0.5
	gapThreshold      = 2
	lowUtilizationPct = 60.0
)

// Recommend derives efficiency hints from a schedule: machine load
// imbalance, large gaps inside a job, and under-used machines. Maintenance
// is not counted as load.
func Recommend(schedule []model.Task, makespan int) []model.Recommendation {
	if len(schedule) == 0 || makespan <= 0 {
		return nil
	}

	var recs []model.Recommendation

	loads := make(map[int]int)
	for _, t := range schedule {
		loads[t.MachineID] += t.Duration
	}
	machines := make([]int, 0, len(loads))
	sum, maxLoad, minLoad := 0, math.MinInt, math.MaxInt
	for m, load := range loads {
		machines = append(machines, m)
		sum += load
		maxLoad = max(maxLoad, load)
		minLoad = min(minLoad, load)
	}
	sort.Ints(machines)
	avg := float64(sum) / float64(len(loads))

	if float64(maxLoad-minLoad) > avg*imbalanceRatio {
		recs = append(recs, model.Recommendation{
			Type:                 model.RecommendationCritical,
			Title:                "Balance Machine Workload",
			Description:          "Machine workloads differ significantly. Consider moving work to less loaded machines.",
			PotentialImprovement: int(math.Round((float64(maxLoad) - avg) / float64(maxLoad) * 100)),
		})
	}

	groups := byJob(schedule)
	jobIDs := make([]int, 0, len(groups))
	for id := range groups {
		jobIDs = append(jobIDs, id)
	}
	sort.Ints(jobIDs)
	for _, id := range jobIDs {
		tasks := append([]model.Task(nil), groups[id]...)
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Start() < tasks[j].Start() })
		for i := 1; i < len(tasks); i++ {
			gap := tasks[i].Start() - tasks[i-1].End()
			if gap > gapThreshold {
				recs = append(recs, model.Recommendation{
					Type:                 model.RecommendationWarning,
					Title:                "Reduce Task Gaps",
					Description:          fmt.Sprintf("Job %d waits %d units between consecutive tasks. Consider tightening its sequence.", id+1, gap),
					PotentialImprovement: int(math.Round(float64(gap) / float64(makespan) * 100)),
				})
				break
			}
		}
	}

	low, minUtil := 0, math.MaxFloat64
	for _, m := range machines {
		util := float64(loads[m]) / float64(makespan) * 100
		if util < lowUtilizationPct {
			low++
		}
		minUtil = math.Min(minUtil, util)
	}
	if low > 0 {
		recs = append(recs, model.Recommendation{
			Type:                 model.RecommendationImprovement,
			Title:                "Optimize Resource Usage",
			Description:          fmt.Sprintf("%d machine(s) are below %.0f%% utilization. Consider consolidating tasks.", low, lowUtilizationPct),
			PotentialImprovement: int(math.Round((lowUtilizationPct - minUtil) / 2)),
		})
	}

	return recs
}
