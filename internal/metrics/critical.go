package metrics

import (
	"sort"

	"github.com/me/shopfloor/pkg/model"
)

// CriticalPath returns the chain of tasks that determines the makespan.
//
// Starting from the last task to finish, it repeatedly steps to the
// predecessor that ends exactly when the current task starts: first the
// previous task of the same job, then the previous task on the same
// machine. The chain stops when neither is tight, which happens at time 0,
// after a maintenance window, or after idle time.
func CriticalPath(schedule []model.Task) []model.Task {
	if len(schedule) == 0 {
		return []model.Task{}
	}

	jobPred := predecessors(schedule, func(t model.Task) int { return t.JobID })
	machinePred := predecessors(schedule, func(t model.Task) int { return t.MachineID })

	last := 0
	for i, t := range schedule {
		if t.End() > schedule[last].End() {
			last = i
		}
	}

	var chain []model.Task
	visited := make(map[int]bool)
	for cur := last; cur >= 0 && !visited[cur]; {
		visited[cur] = true
		chain = append(chain, schedule[cur])
		start := schedule[cur].Start()

		next := -1
		if p := jobPred[cur]; p >= 0 && schedule[p].End() == start {
			next = p
		} else if p := machinePred[cur]; p >= 0 && schedule[p].End() == start {
			next = p
		}
		cur = next
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// predecessors maps each schedule index to the index of the task that
// precedes it by start time within the same group, or -1.
func predecessors(schedule []model.Task, group func(model.Task) int) []int {
	idx := make([]int, len(schedule))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := schedule[idx[a]], schedule[idx[b]]
		if ga, gb := group(ta), group(tb); ga != gb {
			return ga < gb
		}
		return ta.Start() < tb.Start()
	})

	pred := make([]int, len(schedule))
	for i := range pred {
		pred[i] = -1
	}
	for k := 1; k < len(idx); k++ {
		if group(schedule[idx[k]]) == group(schedule[idx[k-1]]) {
			pred[idx[k]] = idx[k-1]
		}
	}
	return pred
}
