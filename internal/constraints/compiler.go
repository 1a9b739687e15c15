// Package constraints is the Constraint Compiler: the densest
// subsystem, emitting the eleven hard constraint families (F1-F11,
// F11 soft) plus the late-ending and medium-availability soft penalty
// families.
package constraints

import (
	"strconv"

	"github.com/udp-edt/timetable-cpsat/internal/cpsat"
	"github.com/udp-edt/timetable-cpsat/internal/model"
	"github.com/udp-edt/timetable-cpsat/internal/store"
	"github.com/udp-edt/timetable-cpsat/internal/variables"
)

// Penalties collects every soft-penalty weighted term the Solver
// Driver folds into the objective.
type Penalties struct {
	Capacity []cpsat.WeightedTerm // F11
	Late     []cpsat.WeightedTerm
	Medium   []cpsat.WeightedTerm
}

// Compiler emits constraints against one cpsat.Model for one instance
// and variable set, honoring a set of disabled families for the
// infeasibility bisection driver.
type Compiler struct {
	m        *cpsat.Model
	inst     *store.Instance
	vars     *variables.Set
	disabled map[Family]bool
}

// New constructs a Compiler. disabledFamilies is typically empty; the
// Solver Driver passes a non-empty set only while running its
// bisection diagnostic.
func New(m *cpsat.Model, inst *store.Instance, vars *variables.Set, disabledFamilies []Family) *Compiler {
	disabled := make(map[Family]bool, len(disabledFamilies))
	for _, f := range disabledFamilies {
		disabled[f] = true
	}
	return &Compiler{m: m, inst: inst, vars: vars, disabled: disabled}
}

// Compile emits every non-disabled hard family and returns the soft
// penalty terms for the objective.
func (c *Compiler) Compile() Penalties {
	if !c.disabled[FamilyRoomExclusion] {
		c.compileRoomExclusion()
	}
	if !c.disabled[FamilyTeacherExclusion] {
		c.compileTeacherExclusion()
	}
	if !c.disabled[FamilyGroupExclusion] {
		c.compileGroupExclusion()
	}
	if !c.disabled[FamilyHierarchyExclusion] {
		c.compileHierarchyExclusion()
	}
	if !c.disabled[FamilyTeacherAvailability] {
		c.compileTeacherAvailability()
	}
	if !c.disabled[FamilyRoomAvailability] {
		c.compileRoomAvailability()
	}
	if !c.disabled[FamilyGroupAvailability] {
		c.compileGroupAvailability()
	}
	if !c.disabled[FamilySessionObligation] {
		c.compileSessionObligation()
	}
	if !c.disabled[FamilyOrdering] {
		c.compileOrdering()
	}

	var pen Penalties
	if !c.disabled[FamilyCapacitySoft] {
		pen.Capacity = c.compileCapacitySoft()
	}
	if !c.disabled[FamilyLateSoft] {
		pen.Late = c.compileLateSoft()
	}
	if !c.disabled[FamilyMediumAvailability] {
		pen.Medium = c.compileMediumAvailability()
	}
	return pen
}

// compileRoomExclusion — F1: at most one session per room per slot.
func (c *Compiler) compileRoomExclusion() {
	cfg := c.inst.Config
	total := cfg.TotalSlots()

	byRoom := make([][]int, len(c.inst.Rooms)) // room -> sessions that may use it
	for ci, s := range c.inst.Sessions {
		for _, r := range s.AllowedRooms {
			byRoom[r] = append(byRoom[r], ci)
		}
	}

	for r, sessions := range byRoom {
		if len(sessions) < 2 {
			continue
		}
		for t := 0; t < total; t++ {
			var conj []cpsat.BoolVar
			for _, ci := range sessions {
				roomVar, ok := c.vars.Room[ci][r]
				if !ok {
					continue
				}
				z := c.m.ReifyAnd(varPairName("roomocc", ci, r, t), c.vars.Occ[ci][t], roomVar)
				conj = append(conj, z)
			}
			c.m.AddAtMostOne(conj...)
		}
	}
}

// compileTeacherExclusion — F2: at most one session per teacher per slot.
func (c *Compiler) compileTeacherExclusion() {
	cfg := c.inst.Config
	total := cfg.TotalSlots()

	byTeacher := make([][]int, len(c.inst.Teachers))
	for ci, s := range c.inst.Sessions {
		for _, p := range s.AllowedTeachers {
			byTeacher[p] = append(byTeacher[p], ci)
		}
	}

	for p, sessions := range byTeacher {
		if len(sessions) < 2 {
			continue
		}
		for t := 0; t < total; t++ {
			var conj []cpsat.BoolVar
			for _, ci := range sessions {
				teachVar, ok := c.vars.Teach[ci][p]
				if !ok {
					continue
				}
				z := c.m.ReifyAnd(varPairName("teachocc", ci, p, t), c.vars.Occ[ci][t], teachVar)
				conj = append(conj, z)
			}
			c.m.AddAtMostOne(conj...)
		}
	}
}

// compileGroupExclusion — F3: at most one session per group per slot.
func (c *Compiler) compileGroupExclusion() {
	cfg := c.inst.Config
	total := cfg.TotalSlots()

	for g := range c.inst.Groups {
		sessions := c.inst.GroupSessions[g]
		if len(sessions) < 2 {
			continue
		}
		for t := 0; t < total; t++ {
			vars := make([]cpsat.BoolVar, len(sessions))
			for i, ci := range sessions {
				vars[i] = c.vars.Occ[ci][t]
			}
			c.m.AddAtMostOne(vars...)
		}
	}
}

// compileHierarchyExclusion — F4: at most one session across a
// sub-group and its parent, per slot. Emitted per sub-group rather
// than per parent: GroupSessionsTransitive on a parent index would
// also pull in every other sub-group's sessions and couple sibling
// cohorts that may legitimately run concurrently (TD/TP splits).
func (c *Compiler) compileHierarchyExclusion() {
	cfg := c.inst.Config
	total := cfg.TotalSlots()

	for g := range c.inst.Groups {
		if !c.inst.Groups[g].HasParent() {
			continue
		}
		sessions := c.inst.GroupSessionsTransitive(g)
		if len(sessions) < 2 {
			continue
		}
		for t := 0; t < total; t++ {
			vars := make([]cpsat.BoolVar, len(sessions))
			for i, ci := range sessions {
				vars[i] = c.vars.Occ[ci][t]
			}
			c.m.AddAtMostOne(vars...)
		}
	}
}

// compileTeacherAvailability — F5.
func (c *Compiler) compileTeacherAvailability() {
	for ci, s := range c.inst.Sessions {
		for _, g := range c.vars.StartSlots[ci] {
			day, offset := model.SplitGlobalSlot(g, c.inst.Config.SlotsPerDay)
			startVar := c.vars.Start[ci][g]
			for _, p := range s.AllowedTeachers {
				hard := hardIntervalsForDay(c.inst, model.OwnerTeacher, p, c.inst.WeekID, day)
				if !coveredByAny(hard, offset, s.Duration) {
					teachVar := c.vars.Teach[ci][p]
					c.m.AddBoolOr(startVar.Not(), teachVar.Not())
				}
			}
		}
	}
}

// compileRoomAvailability — F6.
func (c *Compiler) compileRoomAvailability() {
	for ci, s := range c.inst.Sessions {
		for _, g := range c.vars.StartSlots[ci] {
			day, offset := model.SplitGlobalSlot(g, c.inst.Config.SlotsPerDay)
			startVar := c.vars.Start[ci][g]
			for _, r := range s.AllowedRooms {
				hard := hardIntervalsForDay(c.inst, model.OwnerRoom, r, c.inst.WeekID, day)
				if !coveredByAny(hard, offset, s.Duration) {
					roomVar := c.vars.Room[ci][r]
					c.m.AddBoolOr(startVar.Not(), roomVar.Not())
				}
			}
		}
	}
}

// compileGroupAvailability — F7: a group unavailable across the full
// span of a candidate start forces that start to zero.
func (c *Compiler) compileGroupAvailability() {
	for ci, s := range c.inst.Sessions {
		for _, g := range c.vars.StartSlots[ci] {
			day, offset := model.SplitGlobalSlot(g, c.inst.Config.SlotsPerDay)
			for _, grp := range s.AffectedGroups {
				hard := hardIntervalsForDay(c.inst, model.OwnerGroup, grp, c.inst.WeekID, day)
				if !coveredByAny(hard, offset, s.Duration) {
					c.m.Fix(c.vars.Start[ci][g], false)
					break
				}
			}
		}
	}
}

// compileSessionObligation — F8: a required (day, offset) start fixes
// every other start variable to zero.
func (c *Compiler) compileSessionObligation() {
	for ci, s := range c.inst.Sessions {
		if s.RequiredStart == nil {
			continue
		}
		required := model.GlobalSlot(s.RequiredStart.Day, s.RequiredStart.Offset, c.inst.Config.SlotsPerDay)
		for _, g := range c.vars.StartSlots[ci] {
			if g != required {
				c.m.Fix(c.vars.Start[ci][g], false)
			}
		}
	}
}

// compileOrdering — F10: end(before) <= start(after) on the global
// slot axis, compared unconditionally across days.
func (c *Compiler) compileOrdering() {
	for _, rule := range c.inst.OrderingRules {
		beforeSlots := c.vars.StartSlots[rule.Before]
		afterSlots := c.vars.StartSlots[rule.After]
		beforeDur := c.inst.Sessions[rule.Before].Duration

		for _, s1 := range beforeSlots {
			end1 := s1 + beforeDur
			for _, s2 := range afterSlots {
				if end1 > s2 {
					c.m.AddBoolOr(c.vars.Start[rule.Before][s1].Not(), c.vars.Start[rule.After][s2].Not())
				}
			}
		}
	}
}

// compileCapacitySoft — F11: penalize a session assigned to a room
// whose capacity is below its affected group size.
func (c *Compiler) compileCapacitySoft() []cpsat.WeightedTerm {
	var terms []cpsat.WeightedTerm
	weight := c.inst.Config.CapacityWeight
	for ci, s := range c.inst.Sessions {
		size := groupSize(c.inst, s)
		for _, r := range s.AllowedRooms {
			if c.inst.Rooms[r].Capacity < size {
				terms = append(terms, cpsat.WeightedTerm{Var: c.vars.Room[ci][r], Weight: weight})
			}
		}
	}
	return terms
}

// compileLateSoft: penalize a start whose session ends after the
// configured late threshold.
func (c *Compiler) compileLateSoft() []cpsat.WeightedTerm {
	var terms []cpsat.WeightedTerm
	cfg := c.inst.Config
	weight := cfg.LateWeight
	for ci, s := range c.inst.Sessions {
		for _, g := range c.vars.StartSlots[ci] {
			_, offset := model.SplitGlobalSlot(g, cfg.SlotsPerDay)
			if offset+s.Duration > cfg.LateThresholdOffset {
				terms = append(terms, cpsat.WeightedTerm{Var: c.vars.Start[ci][g], Weight: weight})
			}
		}
	}
	return terms
}

// compileMediumAvailability: Medium-priority availability windows
// route to the objective instead of an exclusion, weighted at
// Config.MediumWeightMultiplier x the late/soft weight.
func (c *Compiler) compileMediumAvailability() []cpsat.WeightedTerm {
	cfg := c.inst.Config
	weight := cfg.MediumWeightMultiplier * cfg.LateWeight
	var terms []cpsat.WeightedTerm

	for ci, s := range c.inst.Sessions {
		for _, g := range c.vars.StartSlots[ci] {
			day, offset := model.SplitGlobalSlot(g, cfg.SlotsPerDay)
			startVar := c.vars.Start[ci][g]

			for _, p := range s.AllowedTeachers {
				dw := resolveDayWindows(c.inst, model.OwnerTeacher, p, c.inst.WeekID, day)
				if len(dw.medium) > 0 && !coveredByAny(dw.medium, offset, s.Duration) {
					z := c.m.ReifyAnd(varPairName("medteach", ci, p, g), startVar, c.vars.Teach[ci][p])
					terms = append(terms, cpsat.WeightedTerm{Var: z, Weight: weight})
				}
			}
			for _, r := range s.AllowedRooms {
				dw := resolveDayWindows(c.inst, model.OwnerRoom, r, c.inst.WeekID, day)
				if len(dw.medium) > 0 && !coveredByAny(dw.medium, offset, s.Duration) {
					z := c.m.ReifyAnd(varPairName("medroom", ci, r, g), startVar, c.vars.Room[ci][r])
					terms = append(terms, cpsat.WeightedTerm{Var: z, Weight: weight})
				}
			}
			for _, grp := range s.AffectedGroups {
				dw := resolveDayWindows(c.inst, model.OwnerGroup, grp, c.inst.WeekID, day)
				if len(dw.medium) > 0 && !coveredByAny(dw.medium, offset, s.Duration) {
					terms = append(terms, cpsat.WeightedTerm{Var: startVar, Weight: weight})
				}
			}
		}
	}
	return terms
}

func groupSize(inst *store.Instance, s model.Session) int {
	total := 0
	for _, gid := range s.AffectedGroups {
		total += inst.Groups[gid].StudentCount
	}
	return total
}

func varPairName(prefix string, a, b, t int) string {
	return prefix + "_" + strconv.Itoa(a) + "_" + strconv.Itoa(b) + "_" + strconv.Itoa(t)
}
