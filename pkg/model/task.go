package model

// Task is a unit of work bound to one machine for a fixed duration.
// StartTime is nil until the dispatcher assigns it on a per-run copy.
type Task struct {
	ID        string `json:"id" yaml:"id"`
	JobID     int    `json:"jobId" yaml:"jobId"`
	MachineID int    `json:"machineId" yaml:"machineId"`
	Duration  int    `json:"duration" yaml:"duration"`
	StartTime *int   `json:"startTime,omitempty" yaml:"startTime,omitempty"`

	// Priority is the score computed by the priority policy for this run.
	Priority *float64 `json:"priority,omitempty" yaml:"priority,omitempty"`

	Deadline         *int `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	SetupTime        *int `json:"setupTime,omitempty" yaml:"setupTime,omitempty"`
	MaintenanceAware bool `json:"maintenanceAware,omitempty" yaml:"maintenanceAware,omitempty"`
}

// Start returns the assigned start time, or 0 when unassigned.
func (t Task) Start() int {
	if t.StartTime == nil {
		return 0
	}
	return *t.StartTime
}

// End returns Start()+Duration.
func (t Task) End() int {
	return t.Start() + t.Duration
}

// Scheduled reports whether a start time has been assigned.
func (t Task) Scheduled() bool {
	return t.StartTime != nil
}

// WithStart returns a copy of t with StartTime set to start.
func (t Task) WithStart(start int) Task {
	s := start
	t.StartTime = &s
	return t
}

// Job is an ordered chain of tasks. Tasks[i] must finish before Tasks[i+1] starts.
type Job struct {
	ID       int    `json:"id" yaml:"id"`
	Tasks    []Task `json:"tasks" yaml:"tasks"`
	Priority *int   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Deadline *int   `json:"deadline,omitempty" yaml:"deadline,omitempty"`
}

// TotalDuration returns the sum of the durations of all tasks in the job.
func (j Job) TotalDuration() int {
	total := 0
	for _, t := range j.Tasks {
		total += t.Duration
	}
	return total
}

// IndexOf returns the position of the task with the given ID, or -1.
func (j Job) IndexOf(taskID string) int {
	for i, t := range j.Tasks {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

// MaintenanceWindow is a fixed occupied interval [StartTime, StartTime+Duration)
// on one machine. The flexible placement fields are carried but not honoured.
type MaintenanceWindow struct {
	ID           string `json:"id" yaml:"id"`
	MachineID    int    `json:"machineId" yaml:"machineId"`
	StartTime    int    `json:"startTime" yaml:"startTime"`
	Duration     int    `json:"duration" yaml:"duration"`
	Flexible     bool   `json:"flexible,omitempty" yaml:"flexible,omitempty"`
	MinStartTime *int   `json:"minStartTime,omitempty" yaml:"minStartTime,omitempty"`
	MaxStartTime *int   `json:"maxStartTime,omitempty" yaml:"maxStartTime,omitempty"`
	Priority     *int   `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// End returns StartTime+Duration.
func (w MaintenanceWindow) End() int {
	return w.StartTime + w.Duration
}
