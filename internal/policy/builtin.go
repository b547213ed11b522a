package policy

import (
	"context"
	"sort"

	"github.com/me/shopfloor/pkg/model"
)

// FIFO keeps declaration order.
type FIFO struct{}

func (FIFO) Name() model.Algorithm { return model.AlgorithmFIFO }

func (FIFO) Order(_ context.Context, pool []Entry) ([]Entry, error) { return pool, nil }

// ShortestFirst orders by ascending duration (shortest processing time).
// It is registered as both "spt" and, for compatibility, "edd".
type ShortestFirst struct {
	name model.Algorithm
}

func (s ShortestFirst) Name() model.Algorithm {
	if s.name == "" {
		return model.AlgorithmSPT
	}
	return s.name
}

func (ShortestFirst) Order(_ context.Context, pool []Entry) ([]Entry, error) {
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Task.Duration < pool[j].Task.Duration
	})
	return pool, nil
}

// Priority weights remaining work, job length and task duration.
type Priority struct{}

func (Priority) Name() model.Algorithm { return model.AlgorithmPriority }

// Score returns 0.5*remaining + 0.3*(jobTotal-index) + 0.2*duration.
func (Priority) Score(e Entry) float64 {
	return float64(e.Remaining())*0.5 +
		float64(e.JobTotal()-e.Position())*0.3 +
		float64(e.Task.Duration)*0.2
}

func (p Priority) Order(_ context.Context, pool []Entry) ([]Entry, error) {
	for i := range pool {
		score := p.Score(pool[i])
		pool[i].Task.Priority = &score
	}
	sortByPriorityDesc(pool)
	return pool, nil
}

// Deadline orders by ascending due date: the task's own deadline, else its
// job's. Entries without any deadline keep their relative order at the end.
type Deadline struct{}

func (Deadline) Name() model.Algorithm { return model.AlgorithmDeadline }

func (Deadline) Order(_ context.Context, pool []Entry) ([]Entry, error) {
	due := func(e Entry) (int, bool) {
		if e.Task.Deadline != nil {
			return *e.Task.Deadline, true
		}
		if e.Job != nil && e.Job.Deadline != nil {
			return *e.Job.Deadline, true
		}
		return 0, false
	}
	sort.SliceStable(pool, func(i, j int) bool {
		di, oki := due(pool[i])
		dj, okj := due(pool[j])
		if oki != okj {
			return oki
		}
		return oki && di < dj
	})
	return pool, nil
}

func sortByPriorityDesc(pool []Entry) {
	sort.SliceStable(pool, func(i, j int) bool {
		return *pool[i].Task.Priority > *pool[j].Task.Priority
	})
}
