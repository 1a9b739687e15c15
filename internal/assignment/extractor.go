// Package assignment is the Assignment Extractor: it decodes a
// feasible cpsat.Result into the canonical (session, day, offset,
// room, teacher) tuples the rest of the system (CLI output, future
// collaborators) consumes, as a flat, sortable slice keyed by dense
// session index.
package assignment

import (
	"sort"

	"github.com/google/uuid"

	"github.com/udp-edt/timetable-cpsat/internal/cpsat"
	"github.com/udp-edt/timetable-cpsat/internal/model"
	"github.com/udp-edt/timetable-cpsat/internal/store"
	"github.com/udp-edt/timetable-cpsat/internal/variables"
)

// Assignment is one session's decoded placement.
type Assignment struct {
	SessionID     int
	ExternalID    string
	Day           int
	StartOffset   int
	DurationSlots int
	RoomID        int
	TeacherID     int
}

// SlotOccupancy maps a global slot to the dense indices of every
// session occupying it; room and teacher are not stored here, only in
// the matching Assignment.
type SlotOccupancy map[int][]int // global slot -> session indices

// Run is the full decoded output of one solve, tagged with a run ID
// so repeated invocations against the same instance are distinguishable
// in logs and downstream storage.
type Run struct {
	RunID       string
	WeekID      int
	Assignments []Assignment
	Occupancy   SlotOccupancy
}

// Extract decodes res against inst and set into a Run. res must be
// feasible; callers check cpsat.Result.Feasible() first.
func Extract(inst *store.Instance, set *variables.Set, res cpsat.Result) Run {
	run := Run{
		RunID:     uuid.NewString(),
		WeekID:    inst.WeekID,
		Occupancy: make(SlotOccupancy),
	}

	for ci, s := range inst.Sessions {
		a := Assignment{
			SessionID:     ci,
			ExternalID:    s.ExternalID,
			DurationSlots: s.Duration,
		}

		for _, g := range set.StartSlots[ci] {
			if res.BoolValue(set.Start[ci][g]) {
				a.Day, a.StartOffset = model.SplitGlobalSlot(g, inst.Config.SlotsPerDay)
				break
			}
		}
		for r, roomVar := range set.Room[ci] {
			if res.BoolValue(roomVar) {
				a.RoomID = r
				break
			}
		}
		for p, teachVar := range set.Teach[ci] {
			if res.BoolValue(teachVar) {
				a.TeacherID = p
				break
			}
		}

		run.Assignments = append(run.Assignments, a)

		global := model.GlobalSlot(a.Day, a.StartOffset, inst.Config.SlotsPerDay)
		for t := global; t < global+a.DurationSlots; t++ {
			run.Occupancy[t] = append(run.Occupancy[t], ci)
		}
	}

	sort.Slice(run.Assignments, func(i, j int) bool {
		return run.Assignments[i].SessionID < run.Assignments[j].SessionID
	})

	return run
}
