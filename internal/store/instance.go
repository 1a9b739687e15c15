package store

import "github.com/udp-edt/timetable-cpsat/internal/model"

// Instance is a value-typed, read-only snapshot of one week's
// scheduling problem: dense-indexed sessions, rooms, teachers, groups,
// and the raw availability windows needed to resolve per-day intervals
// on demand. Safe to share across goroutines for reads; nothing
// mutates it after Load returns.
type Instance struct {
	Config model.Config
	WeekID int

	Sessions []model.Session
	Rooms    []model.Room
	Teachers []model.Teacher
	Groups   []model.Group

	OrderingRules []model.OrderingRule

	// GroupSessions maps a dense group index to every session that
	// concerns it directly (the transitive hierarchy closure is added
	// by GroupSessionsTransitive).
	GroupSessions [][]int

	windows map[ownerKey][]model.AvailabilityWindow
}

type ownerKey struct {
	kind model.OwnerKind
	id   int
}

// ResolvedWindow is one day's effective availability window for an
// owner, still tagged with its priority so the Constraint Compiler can
// route Hard windows to exclusions and Medium/Soft windows to the
// weighted objective.
type ResolvedWindow struct {
	Day      int
	Interval model.Interval
	Priority model.Priority
}

// ResolveAvailability applies the week-scoping resolution rule: for a
// given (day, owner), a week-scoped window for weekID supersedes the
// permanent (week-null) set. When the owner has no window at all for a
// day, the caller (the Constraint Compiler) decides availability via
// Config.EmptyDayMeansUnavailable together with HasAnyWindow.
func (inst *Instance) ResolveAvailability(kind model.OwnerKind, ownerID, weekID int) []ResolvedWindow {
	all := inst.windows[ownerKey{kind, ownerID}]
	if len(all) == 0 {
		return nil
	}

	byDay := make(map[int][]model.AvailabilityWindow)
	for _, w := range all {
		byDay[w.Day] = append(byDay[w.Day], w)
	}

	var out []ResolvedWindow
	for day, ws := range byDay {
		var weekScoped, permanent []model.AvailabilityWindow
		for _, w := range ws {
			if w.WeekID != nil && *w.WeekID != weekID && !w.ForcePermanent {
				continue // scoped to another week
			}
			if w.WeekID != nil && *w.WeekID == weekID && !w.ForcePermanent {
				weekScoped = append(weekScoped, w)
			} else {
				permanent = append(permanent, w)
			}
		}
		chosen := permanent
		if len(weekScoped) > 0 {
			chosen = weekScoped
		}
		for _, w := range chosen {
			out = append(out, ResolvedWindow{Day: day, Interval: w.Interval, Priority: w.Priority})
		}
	}
	return out
}

// HasAnyWindow reports whether the owner has any availability entry at
// all (any day, any week), which is what distinguishes "never
// mentioned, therefore default" from "mentioned, but not for this day"
// per Config.EmptyDayMeansUnavailable.
func (inst *Instance) HasAnyWindow(kind model.OwnerKind, ownerID int) bool {
	return len(inst.windows[ownerKey{kind, ownerID}]) > 0
}

// GroupSessionsTransitive returns, for a dense group index, the set of
// sessions that concern it either directly or through a sub-group in
// the hierarchy (a CM attached to a parent group also concerns every
// sub-group, and vice versa for hierarchical exclusion purposes).
func (inst *Instance) GroupSessionsTransitive(groupIdx int) []int {
	seen := make(map[int]bool)
	var out []int
	add := func(idx int) {
		for _, sid := range inst.GroupSessions[idx] {
			if !seen[sid] {
				seen[sid] = true
				out = append(out, sid)
			}
		}
	}

	add(groupIdx)
	if parent := inst.Groups[groupIdx].ParentID; parent >= 0 {
		add(parent)
	}
	for _, g := range inst.Groups {
		if g.ParentID == groupIdx {
			add(g.ID)
		}
	}
	return out
}
