// Package parser reads scheduling problem documents (YAML or JSON) into
// domain models.
package parser

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/me/shopfloor/internal/logging"
	"github.com/me/shopfloor/pkg/model"
	"gopkg.in/yaml.v3"
)

// Parser converts raw problem documents into model.Problem values.
type Parser struct {
	logger *slog.Logger
}

// New creates a Parser with the given logger.
func New(logger *slog.Logger) *Parser {
	return &Parser{logger: logging.ForComponent(logger, "parser")}
}

// document mirrors the on-disk layout. Pointer fields distinguish an
// omitted value from an explicit zero.
type document struct {
	Name                string         `yaml:"name"`
	Algorithm           string         `yaml:"algorithm"`
	ConsiderMaintenance *bool          `yaml:"considerMaintenance"`
	Expression          string         `yaml:"expression"`
	OptimizeMaintenance bool           `yaml:"optimizeMaintenance"`
	BalanceLoad         bool           `yaml:"balanceLoad"`
	MinimizeSetup       bool           `yaml:"minimizeSetup"`
	Jobs                []jobDoc       `yaml:"jobs"`
	Maintenance         []windowDoc    `yaml:"maintenance"`
	MaintenanceWindows  []windowDoc    `yaml:"maintenanceWindows"`
	Extra               map[string]any `yaml:",inline"`
}

type jobDoc struct {
	ID       int       `yaml:"id"`
	Priority *int      `yaml:"priority"`
	Deadline *int      `yaml:"deadline"`
	Tasks    []taskDoc `yaml:"tasks"`
}

type taskDoc struct {
	ID               string `yaml:"id"`
	JobID            *int   `yaml:"jobId"`
	MachineID        int    `yaml:"machineId"`
	Duration         int    `yaml:"duration"`
	Deadline         *int   `yaml:"deadline"`
	SetupTime        *int   `yaml:"setupTime"`
	MaintenanceAware bool   `yaml:"maintenanceAware"`
}

type windowDoc struct {
	ID           string `yaml:"id"`
	MachineID    int    `yaml:"machineId"`
	StartTime    int    `yaml:"startTime"`
	Duration     int    `yaml:"duration"`
	Flexible     bool   `yaml:"flexible"`
	MinStartTime *int   `yaml:"minStartTime"`
	MaxStartTime *int   `yaml:"maxStartTime"`
	Priority     *int   `yaml:"priority"`
}

// Parse decodes a problem document. JSON is accepted as a YAML subset.
//
// Defaults applied:
//   - a task without jobId belongs to its enclosing job
//   - a task without id is named "<jobId>-<index>"
//   - a window without id is named "mw-<index>"
//   - considerMaintenance defaults to true when windows are present
//
// Structural checks (positive durations and so on) are left to the
// validate package so that all findings can be reported together.
func (p *Parser) Parse(data []byte) (*model.Problem, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	for key := range doc.Extra {
		p.logger.Warn("ignoring unknown field", "field", key)
	}

	prob := &model.Problem{
		Name: doc.Name,
		Jobs: make([]model.Job, 0, len(doc.Jobs)),
		Config: model.ScheduleConfig{
			Algorithm:           model.Algorithm(strings.ToLower(strings.TrimSpace(doc.Algorithm))),
			Expression:          doc.Expression,
			OptimizeMaintenance: doc.OptimizeMaintenance,
			BalanceLoad:         doc.BalanceLoad,
			MinimizeSetup:       doc.MinimizeSetup,
		},
	}

	for _, jd := range doc.Jobs {
		job := model.Job{
			ID:       jd.ID,
			Priority: jd.Priority,
			Deadline: jd.Deadline,
			Tasks:    make([]model.Task, 0, len(jd.Tasks)),
		}
		for i, td := range jd.Tasks {
			task := model.Task{
				ID:               td.ID,
				JobID:            jd.ID,
				MachineID:        td.MachineID,
				Duration:         td.Duration,
				Deadline:         td.Deadline,
				SetupTime:        td.SetupTime,
				MaintenanceAware: td.MaintenanceAware,
			}
			if td.JobID != nil {
				task.JobID = *td.JobID
			}
			if task.ID == "" {
				task.ID = fmt.Sprintf("%d-%d", jd.ID, i)
			}
			job.Tasks = append(job.Tasks, task)
		}
		prob.Jobs = append(prob.Jobs, job)
	}

	windows := append(append([]windowDoc(nil), doc.Maintenance...), doc.MaintenanceWindows...)
	for i, wd := range windows {
		w := model.MaintenanceWindow{
			ID:           wd.ID,
			MachineID:    wd.MachineID,
			StartTime:    wd.StartTime,
			Duration:     wd.Duration,
			Flexible:     wd.Flexible,
			MinStartTime: wd.MinStartTime,
			MaxStartTime: wd.MaxStartTime,
			Priority:     wd.Priority,
		}
		if w.ID == "" {
			w.ID = fmt.Sprintf("mw-%d", i)
		}
		prob.Config.MaintenanceWindows = append(prob.Config.MaintenanceWindows, w)
	}

	if doc.ConsiderMaintenance != nil {
		prob.Config.ConsiderMaintenance = *doc.ConsiderMaintenance
	} else {
		prob.Config.ConsiderMaintenance = len(windows) > 0
	}

	p.logger.Debug("problem parsed",
		"name", prob.Name,
		"jobs", len(prob.Jobs),
		"windows", len(prob.Config.MaintenanceWindows),
		"algorithm", prob.Config.Algorithm)
	return prob, nil
}

// ParseFile reads and parses the problem document at path. The file name
// (without extension) becomes the problem name when the document has none.
func (p *Parser) ParseFile(path string) (*model.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	prob, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if prob.Name == "" {
		prob.Name = problemName(path)
	}
	return prob, nil
}

func problemName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
