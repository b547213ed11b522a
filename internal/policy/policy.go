// Package policy orders the dispatch pool before the greedy loop runs.
// The ordering only breaks ties between equally early candidates.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/me/shopfloor/internal/logging"
	"github.com/me/shopfloor/pkg/model"
)

// Entry is one task in the dispatch pool. Job is nil and Index is -1 when
// the task cannot be located in the job its JobID names.
type Entry struct {
	Task  model.Task
	Job   *model.Job
	Index int
}

// Remaining returns the summed duration of this task and every task after it
// in its job.
func (e Entry) Remaining() int {
	if e.Job == nil || e.Index < 0 {
		return e.Task.Duration
	}
	sum := 0
	for _, t := range e.Job.Tasks[e.Index:] {
		sum += t.Duration
	}
	return sum
}

// JobTotal returns the total duration of the owning job.
func (e Entry) JobTotal() int {
	if e.Job == nil {
		return e.Task.Duration
	}
	return e.Job.TotalDuration()
}

// Position returns Index, or 0 for a task with no owning job.
func (e Entry) Position() int {
	if e.Index < 0 {
		return 0
	}
	return e.Index
}

// Pool flattens jobs into dispatch entries in declaration order. Tasks are
// copied with StartTime and Priority cleared; the caller's jobs are not
// modified. Each task is resolved against the job its JobID names.
func Pool(jobs []model.Job) []Entry {
	byID := make(map[int]*model.Job, len(jobs))
	for i := range jobs {
		if _, dup := byID[jobs[i].ID]; !dup {
			byID[jobs[i].ID] = &jobs[i]
		}
	}

	var pool []Entry
	for _, job := range jobs {
		for _, t := range job.Tasks {
			t.StartTime = nil
			t.Priority = nil
			e := Entry{Task: t, Index: -1}
			if owner, ok := byID[t.JobID]; ok {
				e.Job = owner
				e.Index = owner.IndexOf(t.ID)
			}
			pool = append(pool, e)
		}
	}
	return pool
}

// Policy produces the initial ordering of the pool.
type Policy interface {
	Name() model.Algorithm
	// Order returns the pool in dispatch-preference order. It may reorder
	// the slice in place and must stop when ctx is done.
	Order(ctx context.Context, pool []Entry) ([]Entry, error)
}

// Factory builds a Policy for one scheduling invocation.
type Factory func(cfg model.ScheduleConfig) (Policy, error)

// Registry maps algorithm names to policy factories. Registration happens
// at startup before concurrent access, so no mutex is needed.
type Registry struct {
	factories map[model.Algorithm]Factory
	fallback  model.Algorithm
	logger    *slog.Logger
}

// NewRegistry creates an empty Registry that falls back to fallback for
// unregistered algorithm names.
func NewRegistry(fallback model.Algorithm, logger *slog.Logger) *Registry {
	return &Registry{
		factories: make(map[model.Algorithm]Factory),
		fallback:  fallback,
		logger:    logging.ForComponent(logger, "policy-registry"),
	}
}

// DefaultRegistry returns a registry with every implemented policy and
// priority as the fallback. "maintenance-aware" and "dynamic" are not
// registered and therefore fall back.
func DefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(model.AlgorithmPriority, logger)
	r.Register(model.AlgorithmPriority, static(Priority{}))
	r.Register(model.AlgorithmFIFO, static(FIFO{}))
	r.Register(model.AlgorithmSPT, static(ShortestFirst{name: model.AlgorithmSPT}))
	r.Register(model.AlgorithmEDD, static(ShortestFirst{name: model.AlgorithmEDD}))
	r.Register(model.AlgorithmDeadline, static(Deadline{}))
	r.Register(model.AlgorithmExpression, func(cfg model.ScheduleConfig) (Policy, error) {
		return NewExpression(cfg.Expression)
	})
	return r
}

func static(p Policy) Factory {
	return func(model.ScheduleConfig) (Policy, error) { return p, nil }
}

// Register adds a factory for the given algorithm name.
func (r *Registry) Register(name model.Algorithm, f Factory) {
	r.factories[name] = f
	r.logger.Debug("policy registered", "algorithm", name)
}

// Has reports whether name has a registered policy.
func (r *Registry) Has(name model.Algorithm) bool {
	_, ok := r.factories[name]
	return ok
}

// Algorithms returns the registered algorithm names, sorted.
func (r *Registry) Algorithms() []model.Algorithm {
	names := make([]model.Algorithm, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Resolve builds the policy for cfg.Algorithm. Unregistered names resolve to
// the fallback policy with fellBack set; the caller decides how to report it.
func (r *Registry) Resolve(cfg model.ScheduleConfig) (p Policy, fellBack bool, err error) {
	name := cfg.Algorithm
	f, ok := r.factories[name]
	if !ok {
		f, ok = r.factories[r.fallback]
		if !ok {
			return nil, true, fmt.Errorf("no policy registered for %q and no fallback %q", name, r.fallback)
		}
		fellBack = true
	}
	p, err = f(cfg)
	if err != nil {
		return nil, fellBack, fmt.Errorf("build %s policy: %w", name, err)
	}
	return p, fellBack, nil
}
