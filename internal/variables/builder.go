// Package variables is the Variable Builder: it generates the four
// families of CP-SAT decision variables (start, occupancy, room,
// teacher), pruning impossible slots up front, and emits the
// exactly-one and start-to-occupancy linking constraints that every
// later constraint family builds on.
//
// Creation order is deterministic — sessions in load order, slots in
// (day, offset) order, then rooms, then teachers — so two runs over
// the same instance produce an identical model.
package variables

import (
	"strconv"

	"github.com/udp-edt/timetable-cpsat/internal/cpsat"
	"github.com/udp-edt/timetable-cpsat/internal/model"
	"github.com/udp-edt/timetable-cpsat/internal/store"
)

// Set holds every decision variable the Constraint Compiler and
// Assignment Extractor consult, keyed by dense indices.
type Set struct {
	// Start[c] maps a present global slot to its start variable.
	// Absent entries are implicit zeros (no variable was created).
	Start []map[int]cpsat.BoolVar

	// StartSlots[c] lists the global slots with a present start
	// variable, in ascending order — the deterministic iteration order
	// used by every constraint family.
	StartSlots [][]int

	// Occ[c][t] is the occupancy variable for session c at global slot
	// t, always present (fixed to false when no start covers t).
	Occ [][]cpsat.BoolVar

	// Room[c][r] is present for every r in Sessions[c].AllowedRooms.
	Room []map[int]cpsat.BoolVar

	// Teach[c][p] is present for every p in Sessions[c].AllowedTeachers.
	Teach []map[int]cpsat.BoolVar
}

// Build constructs every variable family over inst and emits the
// exactly-one and start-to-occupancy linking constraints.
func Build(m *cpsat.Model, inst *store.Instance) *Set {
	cfg := inst.Config
	n := len(inst.Sessions)

	set := &Set{
		Start:      make([]map[int]cpsat.BoolVar, n),
		StartSlots: make([][]int, n),
		Occ:        make([][]cpsat.BoolVar, n),
		Room:       make([]map[int]cpsat.BoolVar, n),
		Teach:      make([]map[int]cpsat.BoolVar, n),
	}

	for c, s := range inst.Sessions {
		set.Start[c] = make(map[int]cpsat.BoolVar)
		for day := 0; day < cfg.Days; day++ {
			for offset := 0; offset < cfg.SlotsPerDay; offset++ {
				if !cfg.IsLegalStart(offset, s.Duration) {
					continue
				}
				global := model.GlobalSlot(day, offset, cfg.SlotsPerDay)
				set.Start[c][global] = m.NewBoolVar(varName("start", c, global))
				set.StartSlots[c] = append(set.StartSlots[c], global)
			}
		}
		if len(set.StartSlots[c]) > 0 {
			vars := make([]cpsat.BoolVar, len(set.StartSlots[c]))
			for i, g := range set.StartSlots[c] {
				vars[i] = set.Start[c][g]
			}
			m.AddExactlyOne(vars...)
		}

		set.Room[c] = make(map[int]cpsat.BoolVar)
		for _, r := range s.AllowedRooms {
			set.Room[c][r] = m.NewBoolVar(varName("room", c, r))
		}
		if len(s.AllowedRooms) > 0 {
			vars := make([]cpsat.BoolVar, len(s.AllowedRooms))
			for i, r := range s.AllowedRooms {
				vars[i] = set.Room[c][r]
			}
			m.AddExactlyOne(vars...)
		}

		set.Teach[c] = make(map[int]cpsat.BoolVar)
		for _, p := range s.AllowedTeachers {
			set.Teach[c][p] = m.NewBoolVar(varName("teach", c, p))
		}
		if len(s.AllowedTeachers) > 0 {
			vars := make([]cpsat.BoolVar, len(s.AllowedTeachers))
			for i, p := range s.AllowedTeachers {
				vars[i] = set.Teach[c][p]
			}
			m.AddExactlyOne(vars...)
		}

		buildOccupancy(m, cfg, set, c, s)
	}

	return set
}

// buildOccupancy links start[c,s] to occ[c,t] for every global slot t:
// occ[c,t] = OR of the starts that cover t, or fixed false when no
// start covers t at all.
func buildOccupancy(m *cpsat.Model, cfg model.Config, set *Set, c int, s model.Session) {
	total := cfg.TotalSlots()
	set.Occ[c] = make([]cpsat.BoolVar, total)

	for t := 0; t < total; t++ {
		day, offsetT := model.SplitGlobalSlot(t, cfg.SlotsPerDay)

		var covering []cpsat.BoolVar
		for _, g := range set.StartSlots[c] {
			gDay, offsetS := model.SplitGlobalSlot(g, cfg.SlotsPerDay)
			if gDay != day {
				continue
			}
			if offsetS <= offsetT && offsetT < offsetS+s.Duration {
				covering = append(covering, set.Start[c][g])
			}
		}

		occ := m.NewBoolVar(varName("occ", c, t))
		set.Occ[c][t] = occ

		if len(covering) == 0 {
			m.Fix(occ, false)
			continue
		}
		for _, startVar := range covering {
			m.AddImplication(startVar, occ)
		}
		disjunction := append([]cpsat.BoolVar{occ.Not()}, covering...)
		m.AddBoolOr(disjunction...)
	}
}

func varName(prefix string, ids ...int) string {
	name := prefix
	for _, id := range ids {
		name += "_" + strconv.Itoa(id)
	}
	return name
}
