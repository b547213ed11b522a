package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/me/shopfloor/internal/config"
	"github.com/me/shopfloor/internal/logging"
	"github.com/me/shopfloor/internal/policy"
	"github.com/me/shopfloor/pkg/model"
)

func testEngine() *Engine {
	return New(config.DefaultEngineConfig(), logging.Discard())
}

func scenarioA() []model.Job {
	return []model.Job{
		{ID: 0, Tasks: []model.Task{
			{ID: "0-0", JobID: 0, MachineID: 0, Duration: 3},
			{ID: "0-1", JobID: 0, MachineID: 1, Duration: 2},
		}},
		{ID: 1, Tasks: []model.Task{
			{ID: "1-0", JobID: 1, MachineID: 1, Duration: 2},
			{ID: "1-1", JobID: 1, MachineID: 0, Duration: 4},
		}},
	}
}

func ids(tasks []model.Task) string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return strings.Join(out, ",")
}

func TestScheduleJobs_ScenarioA(t *testing.T) {
	out, err := testEngine().ScheduleJobs(context.Background(), scenarioA(), model.ScheduleConfig{Algorithm: model.AlgorithmPriority})
	if err != nil {
		t.Fatalf("ScheduleJobs: %v", err)
	}
	if out.Infeasible {
		t.Fatalf("unexpected infeasible outcome: %v", out.Remaining)
	}
	if out.Algorithm != model.AlgorithmPriority {
		t.Errorf("Algorithm = %q, want priority", out.Algorithm)
	}
	if got := len(out.Result.Schedule); got != 4 {
		t.Fatalf("schedule has %d tasks, want 4", got)
	}
	if out.Result.Makespan != 7 {
		t.Errorf("Makespan = %d, want 7", out.Result.Makespan)
	}
	if got := ids(out.Result.Schedule); got != "1-0,0-0,1-1,0-1" {
		t.Errorf("commit order = %s, want 1-0,0-0,1-1,0-1", got)
	}
	if errs := ValidateSchedule(out.Result, nil); len(errs) != 0 {
		t.Errorf("ValidateSchedule: %v", errs)
	}

	m := out.Metrics
	if m.MachineUtilization[0] != 100 {
		t.Errorf("utilization[0] = %v, want 100", m.MachineUtilization[0])
	}
	if m.AverageWaitTime != 0.5 {
		t.Errorf("AverageWaitTime = %v, want 0.5", m.AverageWaitTime)
	}
	if got := ids(m.LongestJob); got != "1-0,1-1" {
		t.Errorf("LongestJob = %s, want 1-0,1-1", got)
	}
	if got := ids(m.CriticalPath); got != "0-0,1-1" {
		t.Errorf("CriticalPath = %s, want 0-0,1-1", got)
	}
}

func TestScheduleJobs_ScenarioB(t *testing.T) {
	jobs := []model.Job{{ID: 0, Tasks: []model.Task{{ID: "0-0", JobID: 0, MachineID: 0, Duration: 2}}}}
	windows := []model.MaintenanceWindow{{ID: "m1", MachineID: 0, StartTime: 0, Duration: 5}}

	out, err := testEngine().ScheduleJobs(context.Background(), jobs, model.ScheduleConfig{
		ConsiderMaintenance: true,
		MaintenanceWindows:  windows,
	})
	if err != nil {
		t.Fatalf("ScheduleJobs: %v", err)
	}
	if start := out.Result.Schedule[0].Start(); start < 5 {
		t.Errorf("start = %d, want >= 5", start)
	}
	if errs := ValidateSchedule(out.Result, windows); len(errs) != 0 {
		t.Errorf("ValidateSchedule: %v", errs)
	}

	// Windows are ignored unless maintenance is considered.
	out, err = testEngine().ScheduleJobs(context.Background(), jobs, model.ScheduleConfig{MaintenanceWindows: windows})
	if err != nil {
		t.Fatalf("ScheduleJobs: %v", err)
	}
	if start := out.Result.Schedule[0].Start(); start != 0 {
		t.Errorf("start without maintenance = %d, want 0", start)
	}
}

func TestScheduleJobs_ScenarioC(t *testing.T) {
	out, err := testEngine().ScheduleJobs(context.Background(), nil, model.ScheduleConfig{})
	if err != nil {
		t.Fatalf("ScheduleJobs: %v", err)
	}
	if out.Result.Schedule == nil || len(out.Result.Schedule) != 0 {
		t.Errorf("Schedule = %v, want empty non-nil slice", out.Result.Schedule)
	}
	if out.Result.Makespan != 0 {
		t.Errorf("Makespan = %d, want 0", out.Result.Makespan)
	}
	m := out.Metrics
	if m.MachineUtilization == nil || len(m.MachineUtilization) != 0 {
		t.Errorf("MachineUtilization = %v, want empty map", m.MachineUtilization)
	}
	if m.AverageWaitTime != 0 {
		t.Errorf("AverageWaitTime = %v, want 0", m.AverageWaitTime)
	}
	if m.CriticalPath == nil || len(m.CriticalPath) != 0 {
		t.Errorf("CriticalPath = %v, want empty", m.CriticalPath)
	}
	if m.LongestJob == nil || len(m.LongestJob) != 0 {
		t.Errorf("LongestJob = %v, want empty", m.LongestJob)
	}
}

func TestScheduleJobs_FIFODeclarationOrder(t *testing.T) {
	jobs := []model.Job{
		{ID: 0, Tasks: []model.Task{
			{ID: "a", JobID: 0, MachineID: 0, Duration: 2},
			{ID: "b", JobID: 0, MachineID: 1, Duration: 3},
			{ID: "c", JobID: 0, MachineID: 2, Duration: 1},
		}},
	}
	out, err := testEngine().ScheduleJobs(context.Background(), jobs, model.ScheduleConfig{Algorithm: model.AlgorithmFIFO})
	if err != nil {
		t.Fatalf("ScheduleJobs: %v", err)
	}
	wantStarts := []int{0, 2, 5}
	for i, task := range out.Result.Schedule {
		if task.ID != jobs[0].Tasks[i].ID {
			t.Errorf("commit[%d] = %s, want %s", i, task.ID, jobs[0].Tasks[i].ID)
		}
		if task.Start() != wantStarts[i] {
			t.Errorf("%s start = %d, want %d", task.ID, task.Start(), wantStarts[i])
		}
	}
}

func TestScheduleJobs_DefaultAlgorithm(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.DefaultAlgorithm = model.AlgorithmFIFO
	e := New(cfg, logging.Discard())

	out, err := e.ScheduleJobs(context.Background(), scenarioA(), model.ScheduleConfig{})
	if err != nil {
		t.Fatalf("ScheduleJobs: %v", err)
	}
	if out.Algorithm != model.AlgorithmFIFO {
		t.Errorf("Algorithm = %q, want fifo", out.Algorithm)
	}
}

func TestScheduleJobs_FallbackLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	e := New(config.DefaultEngineConfig(), slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	for _, alg := range []model.Algorithm{model.AlgorithmMaintenanceAware, model.AlgorithmDynamic, "nonsense"} {
		buf.Reset()
		out, err := e.ScheduleJobs(context.Background(), scenarioA(), model.ScheduleConfig{Algorithm: alg})
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		if out.Algorithm != model.AlgorithmPriority {
			t.Errorf("%s: Algorithm = %q, want priority", alg, out.Algorithm)
		}
		if out.Result.Makespan != 7 {
			t.Errorf("%s: Makespan = %d, want 7", alg, out.Result.Makespan)
		}
		if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), string(alg)) {
			t.Errorf("%s: expected WARN naming the algorithm, got %q", alg, buf.String())
		}
	}
}

func TestScheduleJobs_Infeasible(t *testing.T) {
	jobs := []model.Job{
		{ID: 0, Tasks: []model.Task{
			{ID: "0-0", JobID: 0, MachineID: 0, Duration: 1},
			{ID: "0-1", JobID: 7, MachineID: 0, Duration: 1},
		}},
	}
	out, err := testEngine().ScheduleJobs(context.Background(), jobs, model.ScheduleConfig{})
	if err != nil {
		t.Fatalf("ScheduleJobs: %v", err)
	}
	if !out.Infeasible {
		t.Fatal("expected infeasible outcome")
	}
	if len(out.Remaining) != 1 || out.Remaining[0] != "0-1" {
		t.Errorf("Remaining = %v, want [0-1]", out.Remaining)
	}
	if len(out.Result.Schedule) != 1 {
		t.Errorf("partial schedule has %d tasks, want 1", len(out.Result.Schedule))
	}
}

func TestScheduleJobs_ExpressionError(t *testing.T) {
	_, err := testEngine().ScheduleJobs(context.Background(), scenarioA(), model.ScheduleConfig{
		Algorithm:  model.AlgorithmExpression,
		Expression: "undefinedVariable * 2",
	})
	if err == nil {
		t.Fatal("expected error from failing expression")
	}
}

func TestScheduleJobs_MissingExpression(t *testing.T) {
	_, err := testEngine().ScheduleJobs(context.Background(), scenarioA(), model.ScheduleConfig{Algorithm: model.AlgorithmExpression})
	if err == nil {
		t.Fatal("expected error for empty expression")
	}
}

func TestScheduleJobs_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testEngine().ScheduleJobs(ctx, scenarioA(), model.ScheduleConfig{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestScheduleJobs_ExpressionStopsAtDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	jobs := []model.Job{{ID: 0, Tasks: []model.Task{{ID: "a", JobID: 0, MachineID: 0, Duration: 1}}}}
	cfg := model.ScheduleConfig{Algorithm: model.AlgorithmExpression, Expression: "(function(){while(true){}})()"}

	done := make(chan error, 1)
	go func() {
		_, err := testEngine().ScheduleJobs(ctx, jobs, cfg)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v, want context.DeadlineExceeded", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ScheduleJobs still running after the context deadline")
	}
}

func TestScheduleJobs_EmptyIgnoresMaintenance(t *testing.T) {
	cfg := model.ScheduleConfig{
		ConsiderMaintenance: true,
		MaintenanceWindows:  []model.MaintenanceWindow{{ID: "m", MachineID: 0, StartTime: 0, Duration: 4}},
	}
	out, err := testEngine().ScheduleJobs(context.Background(), nil, cfg)
	if err != nil {
		t.Fatalf("ScheduleJobs: %v", err)
	}
	if u := out.Metrics.MachineUtilization; u == nil || len(u) != 0 {
		t.Errorf("MachineUtilization = %v, want empty map", u)
	}
	if out.Metrics.Prediction != nil {
		t.Errorf("Prediction = %+v, want nil", out.Metrics.Prediction)
	}
}

func TestScheduleJobs_Prediction(t *testing.T) {
	e := testEngine()
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return start }

	out, err := e.ScheduleJobs(context.Background(), scenarioA(), model.ScheduleConfig{})
	if err != nil {
		t.Fatalf("ScheduleJobs: %v", err)
	}
	p := out.Metrics.Prediction
	if p == nil {
		t.Fatal("Prediction is nil")
	}
	if want := start.Add(7 * time.Minute); !p.CompletionTime.Equal(want) {
		t.Errorf("CompletionTime = %v, want %v", p.CompletionTime, want)
	}
	// 100 - 5*2 machines - 2*4 tasks
	if p.Confidence != 82 {
		t.Errorf("Confidence = %d, want 82", p.Confidence)
	}
}

func TestScheduleJobs_RecommendationsDisabled(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.Recommendations = false
	e := New(cfg, logging.Discard())

	jobs := []model.Job{{ID: 0, Tasks: []model.Task{
		{ID: "a", JobID: 0, MachineID: 0, Duration: 10},
		{ID: "b", JobID: 0, MachineID: 1, Duration: 1},
	}}}
	out, err := e.ScheduleJobs(context.Background(), jobs, model.ScheduleConfig{})
	if err != nil {
		t.Fatalf("ScheduleJobs: %v", err)
	}
	if out.Metrics.Recommendations != nil {
		t.Errorf("Recommendations = %v, want nil", out.Metrics.Recommendations)
	}
}

func TestScheduleJobs_RoundTripValidates(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	e := testEngine()

	algorithms := append([]model.Algorithm{}, e.Algorithms()...)
	for trial := 0; trial < 25; trial++ {
		jobs := randomJobs(rng)
		windows := []model.MaintenanceWindow{
			{ID: "m0", MachineID: 0, StartTime: rng.Intn(10), Duration: 1 + rng.Intn(4)},
			{ID: "m1", MachineID: 1, StartTime: rng.Intn(10), Duration: 1 + rng.Intn(4)},
		}
		if errs := ValidateJobs(jobs); len(errs) != 0 {
			t.Fatalf("generated invalid jobs: %v", errs)
		}
		for _, alg := range algorithms {
			cfg := model.ScheduleConfig{
				Algorithm:           alg,
				ConsiderMaintenance: true,
				MaintenanceWindows:  windows,
				Expression:          "remaining - index",
			}
			out, err := e.ScheduleJobs(context.Background(), jobs, cfg)
			if err != nil {
				t.Fatalf("trial %d %s: %v", trial, alg, err)
			}
			if out.Infeasible {
				t.Fatalf("trial %d %s: unexpected infeasible outcome", trial, alg)
			}
			if errs := ValidateSchedule(out.Result, windows); len(errs) != 0 {
				t.Errorf("trial %d %s: violations %v", trial, alg, errs)
			}
		}
	}
}

func TestNewWithRegistry(t *testing.T) {
	logger := logging.Discard()
	reg := policy.NewRegistry(model.AlgorithmFIFO, logger)
	reg.Register(model.AlgorithmFIFO, func(model.ScheduleConfig) (policy.Policy, error) { return policy.FIFO{}, nil })

	e := NewWithRegistry(config.DefaultEngineConfig(), reg, logger)
	if got := e.Algorithms(); len(got) != 1 || got[0] != model.AlgorithmFIFO {
		t.Errorf("Algorithms = %v, want [fifo]", got)
	}
	out, err := e.ScheduleJobs(context.Background(), scenarioA(), model.ScheduleConfig{})
	if err != nil {
		t.Fatalf("ScheduleJobs: %v", err)
	}
	if out.Algorithm != model.AlgorithmFIFO {
		t.Errorf("Algorithm = %q, want fifo", out.Algorithm)
	}
}

func randomJobs(rng *rand.Rand) []model.Job {
	n := 1 + rng.Intn(5)
	jobs := make([]model.Job, n)
	for j := range jobs {
		jobs[j].ID = j
		tasks := 1 + rng.Intn(4)
		for k := 0; k < tasks; k++ {
			jobs[j].Tasks = append(jobs[j].Tasks, model.Task{
				ID:        fmt.Sprintf("%d-%d", j, k),
				JobID:     j,
				MachineID: rng.Intn(3),
				Duration:  1 + rng.Intn(6),
			})
		}
	}
	return jobs
}
