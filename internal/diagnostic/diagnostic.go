// Package diagnostic implements the Feasibility Diagnostic: fast
// static checks run before any solver invocation. It reports problems
// rather than aborting — the solver would otherwise simply find the
// instance infeasible, and this localizes the cause.
//
// Grounded on original_source/diagnose.py's DiagnosticEmploiDuTemps:
// _verifier_creneaux_depart_valides, _verifier_capacite_salles and
// _verifier_charge_groupes become checkNoValidStart, checkNoAdequateRoom
// and checkGroupOverbooked below, one-for-one.
package diagnostic

import (
	"go.uber.org/zap"

	"github.com/udp-edt/timetable-cpsat/internal/model"
	"github.com/udp-edt/timetable-cpsat/internal/store"
)

// NoValidStart records a session whose duration exceeds the slots per
// day, or whose every potential start would intersect the lunch
// window.
type NoValidStart struct {
	SessionID  int
	ExternalID string
	Duration   int
}

// NoAdequateRoom records a session whose affected group size exceeds
// every room's capacity.
type NoAdequateRoom struct {
	SessionID  int
	ExternalID string
	GroupSize  int
	MaxRoom    int
}

// GroupOverbooked records a group whose total session-slot demand
// exceeds the usable slots available over the whole week. Necessary
// but not sufficient for feasibility.
type GroupOverbooked struct {
	GroupID      int
	GroupName    string
	Required     int
	UsableSlots  int
}

// Report is the three-list result shape of one diagnostic run.
type Report struct {
	NoValidStart     []NoValidStart
	NoAdequateRoom   []NoAdequateRoom
	GroupOverbooked  []GroupOverbooked
}

// Infeasible reports whether the static diagnostic found any problem.
func (r Report) Infeasible() bool {
	return len(r.NoValidStart) > 0 || len(r.NoAdequateRoom) > 0 || len(r.GroupOverbooked) > 0
}

// Run executes the three checks against inst and logs a narrative
// report, mirroring diagnose.py's _afficher_rapport.
func Run(inst *store.Instance, log *zap.Logger) Report {
	var rep Report

	checkNoValidStart(inst, &rep)
	checkNoAdequateRoom(inst, &rep)
	checkGroupOverbooked(inst, &rep)

	if log != nil {
		logReport(log, inst, rep)
	}
	return rep
}

func checkNoValidStart(inst *store.Instance, rep *Report) {
	cfg := inst.Config
	for _, s := range inst.Sessions {
		hasValidStart := false
		for offset := 0; offset < cfg.SlotsPerDay; offset++ {
			if cfg.IsLegalStart(offset, s.Duration) {
				hasValidStart = true
				break
			}
		}
		if !hasValidStart {
			rep.NoValidStart = append(rep.NoValidStart, NoValidStart{
				SessionID: s.ID, ExternalID: s.ExternalID, Duration: s.Duration,
			})
		}
	}
}

func checkNoAdequateRoom(inst *store.Instance, rep *Report) {
	for _, s := range inst.Sessions {
		groupSize := groupSize(inst, s)
		maxCapacity := 0
		for _, r := range inst.Rooms {
			if r.Capacity > maxCapacity {
				maxCapacity = r.Capacity
			}
		}
		if groupSize > maxCapacity {
			rep.NoAdequateRoom = append(rep.NoAdequateRoom, NoAdequateRoom{
				SessionID: s.ID, ExternalID: s.ExternalID, GroupSize: groupSize, MaxRoom: maxCapacity,
			})
		}
	}
}

func checkGroupOverbooked(inst *store.Instance, rep *Report) {
	usable := inst.Config.TotalUsableSlots()
	for gi, g := range inst.Groups {
		required := 0
		for _, sid := range inst.GroupSessions[gi] {
			required += inst.Sessions[sid].Duration
		}
		if required > usable {
			rep.GroupOverbooked = append(rep.GroupOverbooked, GroupOverbooked{
				GroupID: g.ID, GroupName: g.Name, Required: required, UsableSlots: usable,
			})
		}
	}
}

func groupSize(inst *store.Instance, s model.Session) int {
	total := 0
	for _, gid := range s.AffectedGroups {
		total += inst.Groups[gid].StudentCount
	}
	return total
}

func logReport(log *zap.Logger, inst *store.Instance, rep Report) {
	log.Info("static feasibility diagnostic",
		zap.Int("days", inst.Config.Days),
		zap.Int("slots_per_day", inst.Config.SlotsPerDay),
		zap.Int("usable_slots_total", inst.Config.TotalUsableSlots()),
		zap.Int("no_valid_start", len(rep.NoValidStart)),
		zap.Int("no_adequate_room", len(rep.NoAdequateRoom)),
		zap.Int("group_overbooked", len(rep.GroupOverbooked)),
	)
	for _, p := range rep.NoValidStart {
		log.Warn("session has no valid start", zap.String("session", p.ExternalID), zap.Int("duration", p.Duration))
	}
	for _, p := range rep.NoAdequateRoom {
		log.Warn("session has no adequate room", zap.String("session", p.ExternalID), zap.Int("group_size", p.GroupSize), zap.Int("max_room_capacity", p.MaxRoom))
	}
	for _, p := range rep.GroupOverbooked {
		log.Warn("group overbooked", zap.String("group", p.GroupName), zap.Int("required_slots", p.Required), zap.Int("usable_slots", p.UsableSlots))
	}
}
