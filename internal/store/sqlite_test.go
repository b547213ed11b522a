package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/me/shopfloor/pkg/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRun(id string, created time.Time) *model.Run {
	task := model.Task{ID: "0-0", JobID: 0, MachineID: 0, Duration: 3}
	return &model.Run{
		ID:        id,
		Name:      "simple",
		Algorithm: model.AlgorithmPriority,
		Problem: model.Problem{
			Name: "simple",
			Jobs: []model.Job{{ID: 0, Tasks: []model.Task{task}}},
			Config: model.ScheduleConfig{
				Algorithm:           model.AlgorithmPriority,
				ConsiderMaintenance: true,
				MaintenanceWindows:  []model.MaintenanceWindow{{ID: "m1", MachineID: 0, StartTime: 0, Duration: 2}},
			},
		},
		Outcome: model.ScheduleOutcome{
			Algorithm: model.AlgorithmPriority,
			Result: model.ScheduleResult{
				Schedule: []model.Task{task.WithStart(2)},
				Makespan: 5,
			},
			Metrics: model.ScheduleMetrics{
				MachineUtilization: map[int]float64{0: 100},
				LongestJob:         []model.Task{task.WithStart(2)},
				CriticalPath:       []model.Task{task.WithStart(2)},
			},
		},
		CreatedAt: created,
	}
}

func TestCreateAndGetRun(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	created := time.Now().UTC().Truncate(time.Millisecond)

	if err := st.CreateRun(ctx, sampleRun("run_1", created)); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	got, err := st.GetRun(ctx, "run_1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got == nil {
		t.Fatal("GetRun returned nil")
	}
	if got.Name != "simple" || got.Algorithm != model.AlgorithmPriority {
		t.Errorf("got name=%q algorithm=%q", got.Name, got.Algorithm)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if len(got.Problem.Jobs) != 1 || len(got.Problem.Config.MaintenanceWindows) != 1 {
		t.Errorf("problem = %+v", got.Problem)
	}
	sched := got.Outcome.Result.Schedule
	if len(sched) != 1 || sched[0].Start() != 2 {
		t.Errorf("schedule = %+v", sched)
	}
	if got.Outcome.Metrics.MachineUtilization[0] != 100 {
		t.Errorf("utilization = %v", got.Outcome.Metrics.MachineUtilization)
	}
	if got.Violations == nil || len(got.Violations) != 0 {
		t.Errorf("Violations = %v, want empty", got.Violations)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	st := testStore(t)
	got, err := st.GetRun(context.Background(), "run_missing")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestCreateRun_DuplicateID(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	run := sampleRun("run_dup", time.Now().UTC())
	if err := st.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := st.CreateRun(ctx, run); err == nil {
		t.Error("expected error on duplicate id")
	}
}

func TestListRuns_Pagination(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := st.CreateRun(ctx, sampleRun(fmt.Sprintf("run_%d", i), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}

	runs, total, err := st.ListRuns(ctx, model.ListOptions{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run_4" || runs[1].ID != "run_3" {
		t.Errorf("order = %s,%s, want newest first", runs[0].ID, runs[1].ID)
	}
	if runs[0].TaskCount != 1 || runs[0].Makespan != 5 {
		t.Errorf("summary = %+v", runs[0])
	}

	runs, _, err = st.ListRuns(ctx, model.ListOptions{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run_0" {
		t.Errorf("last page = %+v", runs)
	}
}

func TestListRuns_AlgorithmFilter(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := sampleRun("run_a", now)
	b := sampleRun("run_b", now)
	b.Algorithm = model.AlgorithmFIFO
	b.Outcome.Infeasible = true
	for _, r := range []*model.Run{a, b} {
		if err := st.CreateRun(ctx, r); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}

	runs, total, err := st.ListRuns(ctx, model.ListOptions{Algorithm: "fifo"})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if total != 1 || len(runs) != 1 || runs[0].ID != "run_b" {
		t.Fatalf("got total=%d runs=%+v", total, runs)
	}
	if !runs[0].Infeasible {
		t.Error("Infeasible = false, want true")
	}
}

func TestListRuns_Empty(t *testing.T) {
	st := testStore(t)
	runs, total, err := st.ListRuns(context.Background(), model.DefaultListOptions())
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if total != 0 || runs == nil || len(runs) != 0 {
		t.Errorf("got total=%d runs=%v", total, runs)
	}
}

func TestDeleteRun(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	if err := st.CreateRun(ctx, sampleRun("run_del", time.Now().UTC())); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := st.DeleteRun(ctx, "run_del"); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if got, _ := st.GetRun(ctx, "run_del"); got != nil {
		t.Error("run still present after delete")
	}
	if err := st.DeleteRun(ctx, "run_del"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	st := testStore(t)
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestFileStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopfloor.db")
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := context.Background()

	st, err := NewSQLiteStore(path, logger)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := st.CreateRun(ctx, sampleRun("run_file", time.Now().UTC())); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	st.Close()

	st, err = NewSQLiteStore(path, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	got, err := st.GetRun(ctx, "run_file")
	if err != nil || got == nil {
		t.Fatalf("GetRun after reopen = %v, %v", got, err)
	}
}
