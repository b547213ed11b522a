package model

import "testing"

func TestTaskState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    TaskState
		terminal bool
	}{
		{TaskStatePending, false},
		{TaskStateReady, false},
		{TaskStateCommitted, true},
	}
	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.terminal {
			t.Errorf("TaskState(%q).IsTerminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}

func TestTaskState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from  TaskState
		to    TaskState
		valid bool
	}{
		{TaskStatePending, TaskStateReady, true},
		{TaskStateReady, TaskStateReady, true},
		{TaskStateReady, TaskStateCommitted, true},

		{TaskStatePending, TaskStateCommitted, false},
		{TaskStateReady, TaskStatePending, false},
		{TaskStateCommitted, TaskStatePending, false},
		{TaskStateCommitted, TaskStateReady, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.valid {
			t.Errorf("%s → %s = %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}
