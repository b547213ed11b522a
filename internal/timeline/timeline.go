// Package timeline models per-machine occupancy and finds the earliest
// conflict-free slot for a task.
package timeline

import (
	"sort"

	"github.com/me/shopfloor/pkg/model"
)

// Kind identifies what occupies an Interval.
type Kind string

const (
	KindTask        Kind = "task"
	KindMaintenance Kind = "maintenance"
)

// Interval is a half-open occupied span [Start, End) on one machine.
type Interval struct {
	Start int
	End   int
	Kind  Kind
	ID    string
	JobID int // only meaningful for KindTask
}

// Overlaps reports whether iv and other share any instant.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Occupancy returns every interval on machine from the committed tasks and
// windows, sorted by start. Tasks without a start time are ignored.
func Occupancy(machine int, committed []model.Task, windows []model.MaintenanceWindow) []Interval {
	var slots []Interval
	for _, t := range committed {
		if t.MachineID != machine || !t.Scheduled() {
			continue
		}
		slots = append(slots, Interval{Start: t.Start(), End: t.End(), Kind: KindTask, ID: t.ID, JobID: t.JobID})
	}
	for _, w := range windows {
		if w.MachineID != machine {
			continue
		}
		slots = append(slots, Interval{Start: w.StartTime, End: w.End(), Kind: KindMaintenance, ID: w.ID, JobID: -1})
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	return slots
}

// Earliest returns the first time >= lowerBound at which task fits on its
// machine without overlapping a committed task or maintenance window.
// The search is leftmost-fit: it never moves an already committed task.
func Earliest(task model.Task, committed []model.Task, windows []model.MaintenanceWindow, lowerBound int) int {
	return earliestIn(Occupancy(task.MachineID, committed, windows), task.Duration, lowerBound)
}

func earliestIn(slots []Interval, duration, lowerBound int) int {
	candidate := lowerBound
	for _, slot := range slots {
		if candidate+duration <= slot.Start {
			break
		}
		if candidate < slot.End {
			candidate = slot.End
		}
	}
	return candidate
}

// Machines returns the sorted set of machine ids referenced by tasks and windows.
func Machines(tasks []model.Task, windows []model.MaintenanceWindow) []int {
	seen := make(map[int]bool)
	for _, t := range tasks {
		seen[t.MachineID] = true
	}
	for _, w := range windows {
		seen[w.MachineID] = true
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
