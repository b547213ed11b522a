package model

// Algorithm names a task-ordering strategy.
type Algorithm string

const (
	AlgorithmPriority         Algorithm = "priority"
	AlgorithmFIFO             Algorithm = "fifo"
	AlgorithmEDD              Algorithm = "edd"
	AlgorithmSPT              Algorithm = "spt"
	AlgorithmDeadline         Algorithm = "deadline"
	AlgorithmExpression       Algorithm = "expression"
	AlgorithmMaintenanceAware Algorithm = "maintenance-aware"
	AlgorithmDynamic          Algorithm = "dynamic"
)

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}

// ScheduleConfig controls one scheduling invocation.
type ScheduleConfig struct {
	Algorithm           Algorithm           `json:"algorithm" yaml:"algorithm"`
	ConsiderMaintenance bool                `json:"considerMaintenance" yaml:"considerMaintenance"`
	MaintenanceWindows  []MaintenanceWindow `json:"maintenanceWindows,omitempty" yaml:"maintenanceWindows,omitempty"`

	// Expression is the JavaScript scoring expression used by the
	// "expression" algorithm.
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`

	// Declared for compatibility; no policy reads these yet.
	OptimizeMaintenance bool `json:"optimizeMaintenance,omitempty" yaml:"optimizeMaintenance,omitempty"`
	BalanceLoad         bool `json:"balanceLoad,omitempty" yaml:"balanceLoad,omitempty"`
	MinimizeSetup       bool `json:"minimizeSetup,omitempty" yaml:"minimizeSetup,omitempty"`
}

// ActiveWindows returns the maintenance windows the dispatcher must honour:
// all configured windows when ConsiderMaintenance is set, otherwise none.
func (c ScheduleConfig) ActiveWindows() []MaintenanceWindow {
	if !c.ConsiderMaintenance {
		return nil
	}
	return c.MaintenanceWindows
}
