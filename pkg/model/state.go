package model

// TaskState is the dispatch state of a task within one scheduling run.
type TaskState string

const (
	TaskStatePending   TaskState = "PENDING"
	TaskStateReady     TaskState = "READY"
	TaskStateCommitted TaskState = "COMMITTED"
)

// String returns the string representation of the task state.
func (s TaskState) String() string {
	return string(s)
}

// IsTerminal returns true if the task can no longer change state.
func (s TaskState) IsTerminal() bool {
	return s == TaskStateCommitted
}

// ValidTaskTransitions defines the allowed state transitions for Tasks.
// A ready task that loses the selection round stays ready.
var ValidTaskTransitions = map[TaskState][]TaskState{
	TaskStatePending: {TaskStateReady},
	TaskStateReady:   {TaskStateReady, TaskStateCommitted},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s TaskState) CanTransitionTo(next TaskState) bool {
	for _, allowed := range ValidTaskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
