package parser

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/me/shopfloor/pkg/model"
)

func testParser() *Parser {
	return New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func testdataPath(rel string) string {
	return filepath.Join("..", "..", "testdata", rel)
}

func TestParseFile_Simple2x2(t *testing.T) {
	prob, err := testParser().ParseFile(testdataPath("problems/simple-2x2.yaml"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if prob.Name != "Simple 2x2" {
		t.Errorf("Name = %q, want Simple 2x2", prob.Name)
	}
	if prob.Config.Algorithm != model.AlgorithmPriority {
		t.Errorf("Algorithm = %q, want priority", prob.Config.Algorithm)
	}
	if len(prob.Jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(prob.Jobs))
	}
	for _, job := range prob.Jobs {
		for _, task := range job.Tasks {
			if task.JobID != job.ID {
				t.Errorf("task %s JobID = %d, want %d", task.ID, task.JobID, job.ID)
			}
		}
	}
	if got := prob.Jobs[1].Tasks[1]; got.MachineID != 0 || got.Duration != 4 {
		t.Errorf("task 1-1 = %+v", got)
	}
	if prob.Config.ConsiderMaintenance {
		t.Error("ConsiderMaintenance should be false without windows")
	}
}

func TestParseFile_JSON(t *testing.T) {
	prob, err := testParser().ParseFile(testdataPath("problems/3x3.json"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if prob.Config.Algorithm != model.AlgorithmFIFO {
		t.Errorf("Algorithm = %q, want fifo", prob.Config.Algorithm)
	}
	total := 0
	for _, job := range prob.Jobs {
		total += len(job.Tasks)
	}
	if total != 9 {
		t.Errorf("got %d tasks, want 9", total)
	}
}

func TestParseFile_Maintenance(t *testing.T) {
	prob, err := testParser().ParseFile(testdataPath("problems/maintenance.yaml"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if prob.Name != "maintenance" {
		t.Errorf("Name = %q, want name derived from file", prob.Name)
	}
	if !prob.Config.ConsiderMaintenance {
		t.Error("ConsiderMaintenance = false, want true")
	}
	windows := prob.Config.MaintenanceWindows
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	if w := windows[0]; w.ID != "m1" || w.MachineID != 0 || w.StartTime != 0 || w.Duration != 5 {
		t.Errorf("window = %+v", w)
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := testParser().ParseFile(testdataPath("problems/does-not-exist.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_Defaults(t *testing.T) {
	data := []byte(`
jobs:
  - id: 4
    tasks:
      - {machineId: 1, duration: 2}
      - {id: custom, jobId: 9, machineId: 0, duration: 1}
maintenanceWindows:
  - {machineId: 1, startTime: 3, duration: 1}
`)
	prob, err := testParser().Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tasks := prob.Jobs[0].Tasks
	if tasks[0].ID != "4-0" || tasks[0].JobID != 4 {
		t.Errorf("defaulted task = %+v, want id 4-0 jobId 4", tasks[0])
	}
	if tasks[1].ID != "custom" || tasks[1].JobID != 9 {
		t.Errorf("explicit task = %+v, want id custom jobId 9", tasks[1])
	}
	if prob.Config.Algorithm != "" {
		t.Errorf("Algorithm = %q, want empty", prob.Config.Algorithm)
	}
	if len(prob.Config.MaintenanceWindows) != 1 || prob.Config.MaintenanceWindows[0].ID != "mw-0" {
		t.Errorf("windows = %+v", prob.Config.MaintenanceWindows)
	}
	if !prob.Config.ConsiderMaintenance {
		t.Error("ConsiderMaintenance should default to true when windows are given")
	}
}

func TestParse_ExplicitlyIgnoreMaintenance(t *testing.T) {
	data := []byte(`
considerMaintenance: false
jobs: [{id: 0, tasks: [{machineId: 0, duration: 1}]}]
maintenance: [{id: m, machineId: 0, startTime: 0, duration: 2}]
`)
	prob, err := testParser().Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if prob.Config.ConsiderMaintenance {
		t.Error("ConsiderMaintenance = true, want false")
	}
	if len(prob.Config.ActiveWindows()) != 0 {
		t.Error("ActiveWindows should be empty")
	}
}

func TestParse_AlgorithmNormalized(t *testing.T) {
	prob, err := testParser().Parse([]byte("algorithm: \" EDD \"\njobs: []\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if prob.Config.Algorithm != model.AlgorithmEDD {
		t.Errorf("Algorithm = %q, want edd", prob.Config.Algorithm)
	}
	if prob.Jobs == nil || len(prob.Jobs) != 0 {
		t.Errorf("Jobs = %v, want empty", prob.Jobs)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", "jobs: [\n"},
		{"wrong type", "jobs: {id: 0}\n"},
		{"non-numeric duration", "jobs: [{id: 0, tasks: [{machineId: 0, duration: long}]}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := testParser().Parse([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParse_InvalidStructureStillParses(t *testing.T) {
	prob, err := testParser().ParseFile(testdataPath("problems/invalid.yaml"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(prob.Jobs) != 2 || len(prob.Jobs[1].Tasks) != 0 {
		t.Errorf("jobs = %+v", prob.Jobs)
	}
	if prob.Jobs[0].Tasks[0].MachineID != -1 {
		t.Errorf("MachineID = %d, want -1", prob.Jobs[0].Tasks[0].MachineID)
	}
}
