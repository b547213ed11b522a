// Package engine is the library entry point for scheduling. It resolves the
// ordering policy, runs the greedy dispatcher and derives metrics.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/shopfloor/internal/config"
	"github.com/me/shopfloor/internal/logging"
	"github.com/me/shopfloor/internal/metrics"
	"github.com/me/shopfloor/internal/policy"
	"github.com/me/shopfloor/internal/scheduler"
	"github.com/me/shopfloor/internal/validate"
	"github.com/me/shopfloor/pkg/model"
)

// Engine schedules job sets. It holds no per-run state and is safe for
// concurrent use once constructed.
type Engine struct {
	cfg        config.EngineConfig
	registry   *policy.Registry
	dispatcher *scheduler.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// New creates an Engine with the default policy registry.
func New(cfg config.EngineConfig, logger *slog.Logger) *Engine {
	return NewWithRegistry(cfg, policy.DefaultRegistry(logger), logger)
}

// NewWithRegistry creates an Engine that resolves policies from registry.
func NewWithRegistry(cfg config.EngineConfig, registry *policy.Registry, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:        cfg,
		registry:   registry,
		dispatcher: scheduler.NewDispatcher(logger),
		logger:     logging.ForComponent(logger, "engine"),
		now:        time.Now,
	}
}

// Algorithms returns the algorithm names with a registered policy.
func (e *Engine) Algorithms() []model.Algorithm {
	return e.registry.Algorithms()
}

// ScheduleJobs builds a schedule for jobs. The caller's jobs are not
// modified. Unknown algorithms fall back to priority. Unsatisfiable
// precedence is reported through Outcome.Infeasible rather than an error;
// an error is returned only when the policy fails or ctx is cancelled.
func (e *Engine) ScheduleJobs(ctx context.Context, jobs []model.Job, cfg model.ScheduleConfig) (*model.ScheduleOutcome, error) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = e.cfg.DefaultAlgorithm
	}

	p, fellBack, err := e.registry.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	if fellBack {
		e.logger.Warn("algorithm not implemented, using fallback",
			"requested", cfg.Algorithm, "using", p.Name())
	}

	windows := cfg.ActiveWindows()
	outcome := &model.ScheduleOutcome{Algorithm: p.Name()}

	pool := policy.Pool(jobs)
	if len(pool) == 0 {
		// Empty problems report empty metrics, maintenance included.
		outcome.Result = model.ScheduleResult{Schedule: []model.Task{}}
		outcome.Metrics = e.metrics(nil, 0, nil)
		return outcome, nil
	}

	ordered, err := p.Order(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("order tasks (%s): %w", p.Name(), err)
	}

	res, err := e.dispatcher.Dispatch(ctx, ordered, windows)
	var infeasible *scheduler.InfeasibleError
	switch {
	case errors.As(err, &infeasible):
		outcome.Infeasible = true
		outcome.Remaining = infeasible.Remaining
	case err != nil:
		return nil, fmt.Errorf("dispatch: %w", err)
	}

	outcome.Result = res
	outcome.Metrics = e.metrics(res.Schedule, res.Makespan, windows)

	e.logger.Info("schedule built",
		"algorithm", p.Name(),
		"tasks", len(res.Schedule),
		"makespan", res.Makespan,
		"infeasible", outcome.Infeasible)
	return outcome, nil
}

func (e *Engine) metrics(schedule []model.Task, makespan int, windows []model.MaintenanceWindow) model.ScheduleMetrics {
	m := metrics.Compute(schedule, makespan, windows)
	if !e.cfg.Recommendations {
		m.Recommendations = nil
	}
	if len(schedule) > 0 {
		p := metrics.Predict(schedule, makespan, e.now())
		m.Prediction = &p
	}
	return m
}

// ValidateJobs runs the pre-flight structural checks on jobs.
func ValidateJobs(jobs []model.Job) []model.JobError {
	return validate.Jobs(jobs)
}

// ValidateSchedule checks a committed schedule for missing start times,
// machine conflicts and precedence violations.
func ValidateSchedule(result model.ScheduleResult, windows []model.MaintenanceWindow) []string {
	return validate.Schedule(result, windows)
}
