package constraints

import (
	"github.com/udp-edt/timetable-cpsat/internal/model"
	"github.com/udp-edt/timetable-cpsat/internal/store"
)

// dayWindows partitions owner's resolved availability for one day into
// the Hard-priority intervals (used for F5/F6/F7 exclusions) and the
// Medium-priority intervals (used for the medium-availability soft
// penalty). It also reports whether the day had any entry at all, of
// any priority: an owner that is simply never mentioned is always
// fully available, independent of Config.EmptyDayMeansUnavailable.
type dayWindows struct {
	hard         []model.Interval
	medium       []model.Interval
	hasAnyForDay bool
}

func resolveDayWindows(inst *store.Instance, kind model.OwnerKind, ownerIdx, weekID, day int) dayWindows {
	var dw dayWindows
	for _, rw := range inst.ResolveAvailability(kind, ownerIdx, weekID) {
		if rw.Day != day {
			continue
		}
		dw.hasAnyForDay = true
		switch rw.Priority {
		case model.Hard:
			dw.hard = append(dw.hard, rw.Interval)
		case model.Medium:
			dw.medium = append(dw.medium, rw.Interval)
		}
	}
	return dw
}

// hardIntervalsForDay resolves the effective Hard-priority availability
// intervals for owner on day, applying the empty-day convention. A day
// with no entries at all for an owner never mentioned in the
// availability table is always fully available; a day with no entries
// for an owner that *is* mentioned elsewhere follows
// Config.EmptyDayMeansUnavailable.
func hardIntervalsForDay(inst *store.Instance, kind model.OwnerKind, ownerIdx, weekID, day int) []model.Interval {
	dw := resolveDayWindows(inst, kind, ownerIdx, weekID, day)
	if len(dw.hard) > 0 {
		return dw.hard
	}
	if dw.hasAnyForDay {
		// entries exist for the day, just none Hard: Medium/Soft
		// windows never restrict hard availability.
		return fullDay(inst)
	}
	if !inst.HasAnyWindow(kind, ownerIdx) {
		return fullDay(inst)
	}
	if inst.Config.EmptyDayMeansUnavailable {
		return nil
	}
	return fullDay(inst)
}

func fullDay(inst *store.Instance) []model.Interval {
	return []model.Interval{{Start: 0, End: inst.Config.SlotsPerDay}}
}

// coveredByAny reports whether some interval in ivs fully covers
// [offset, offset+dur).
func coveredByAny(ivs []model.Interval, offset, dur int) bool {
	for _, iv := range ivs {
		if iv.Contains(offset, dur) {
			return true
		}
	}
	return false
}
