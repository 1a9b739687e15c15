package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/udp-edt/timetable-cpsat/internal/model"
)

// Load builds a dense-indexed Instance for weekID from src, deriving
// Session.AllowedRooms from explicit room restrictions only (capacity is
// left to the F11 soft penalty), and returning a *DataError when mandatory fields are missing or a
// cross-reference is dangling.
func Load(ctx context.Context, src Source, cfg model.Config, weekID int) (*Instance, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	derr := newDataError()

	rawRooms, err := src.Rooms()
	if err != nil {
		return nil, fmt.Errorf("loading rooms: %w", err)
	}
	rawTeachers, err := src.Teachers()
	if err != nil {
		return nil, fmt.Errorf("loading teachers: %w", err)
	}
	rawGroups, err := src.Groups()
	if err != nil {
		return nil, fmt.Errorf("loading groups: %w", err)
	}
	rawSessions, err := src.Sessions()
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	rawAvail, err := src.Availability()
	if err != nil {
		return nil, fmt.Errorf("loading availability: %w", err)
	}

	cfg.Days = src.Days()
	cfg.SlotsPerDay = src.SlotsPerDay()
	cfg.LunchWindow = src.LunchWindow()

	inst := &Instance{
		Config:  cfg,
		WeekID:  weekID,
		windows: make(map[ownerKey][]model.AvailabilityWindow),
	}

	// Dense indices follow ascending external id, so the same input
	// always yields the same index space.
	roomExtIDs := make([]int, 0, len(rawRooms))
	for extID := range rawRooms {
		roomExtIDs = append(roomExtIDs, extID)
	}
	sort.Ints(roomExtIDs)
	roomIndex := make(map[int]int, len(rawRooms))
	for _, extID := range roomExtIDs {
		capacity := rawRooms[extID]
		if capacity <= 0 {
			derr.add("room %d: capacity must be positive, got %d", extID, capacity)
			continue
		}
		roomIndex[extID] = len(inst.Rooms)
		inst.Rooms = append(inst.Rooms, model.Room{ID: len(inst.Rooms), Code: fmt.Sprintf("%d", extID), Capacity: capacity})
	}

	teacherExtIDs := make([]int, 0, len(rawTeachers))
	for extID := range rawTeachers {
		teacherExtIDs = append(teacherExtIDs, extID)
	}
	sort.Ints(teacherExtIDs)
	teacherIndex := make(map[int]int, len(rawTeachers))
	for _, extID := range teacherExtIDs {
		teacherIndex[extID] = len(inst.Teachers)
		inst.Teachers = append(inst.Teachers, model.Teacher{ID: len(inst.Teachers), Name: rawTeachers[extID]})
	}

	groupIndex := make(map[int]int, len(rawGroups))
	for _, rg := range rawGroups {
		if _, dup := groupIndex[rg.ExternalID]; dup {
			derr.add("group %d: duplicate external id", rg.ExternalID)
			continue
		}
		groupIndex[rg.ExternalID] = len(inst.Groups)
		inst.Groups = append(inst.Groups, model.Group{
			ID:           len(inst.Groups),
			Name:         rg.Name,
			ParentID:     -1,
			StudentCount: rg.StudentCount,
		})
	}
	for _, rg := range rawGroups {
		if rg.ParentID == nil {
			continue
		}
		idx := groupIndex[rg.ExternalID]
		parentIdx, ok := groupIndex[*rg.ParentID]
		if !ok {
			derr.add("group %d: dangling parent reference %d", rg.ExternalID, *rg.ParentID)
			continue
		}
		inst.Groups[idx].ParentID = parentIdx
	}

	inst.GroupSessions = make([][]int, len(inst.Groups))

	for _, rs := range rawSessions {
		if rs.Duration <= 0 {
			derr.add("session %q: duration must be positive, got %d", rs.ExternalID, rs.Duration)
			continue
		}
		if len(rs.GroupIDs) == 0 {
			derr.add("session %q: must affect at least one group", rs.ExternalID)
			continue
		}
		if len(rs.AllowedTeachers) == 0 {
			derr.add("session %q: must have at least one allowed teacher (no synthetic teachers are invented)", rs.ExternalID)
			continue
		}

		groups := make([]int, 0, len(rs.GroupIDs))
		groupSize := 0
		ok := true
		for _, extGroup := range rs.GroupIDs {
			idx, found := groupIndex[extGroup]
			if !found {
				derr.add("session %q: dangling group reference %d", rs.ExternalID, extGroup)
				ok = false
				continue
			}
			groups = append(groups, idx)
			groupSize += inst.Groups[idx].StudentCount
		}
		if !ok {
			continue
		}

		teachers := make([]int, 0, len(rs.AllowedTeachers))
		for _, extTeacher := range rs.AllowedTeachers {
			idx, found := teacherIndex[extTeacher]
			if !found {
				derr.add("session %q: dangling teacher reference %d", rs.ExternalID, extTeacher)
				ok = false
				continue
			}
			teachers = append(teachers, idx)
		}
		if !ok {
			continue
		}

		// AllowedRooms is every room unless an explicit obligation
		// restricts the set; capacity mismatch is not a hard filter
		// here, it is the F11 soft penalty (a session may legally be
		// assigned an undersized room at a cost).
		var allowedRooms []int
		if len(rs.RoomRestriction) > 0 {
			for _, extRoom := range rs.RoomRestriction {
				idx, found := roomIndex[extRoom]
				if !found {
					derr.add("session %q: dangling room restriction %d", rs.ExternalID, extRoom)
					ok = false
					continue
				}
				allowedRooms = append(allowedRooms, idx)
			}
			if !ok {
				continue
			}
		} else {
			for idx := range inst.Rooms {
				allowedRooms = append(allowedRooms, idx)
			}
		}

		sessionIdx := len(inst.Sessions)
		inst.Sessions = append(inst.Sessions, model.Session{
			ID:              sessionIdx,
			Type:            rs.Type,
			Subject:         rs.Subject,
			Duration:        rs.Duration,
			ExternalID:      rs.ExternalID,
			AffectedGroups:  groups,
			AllowedTeachers: teachers,
			AllowedRooms:    allowedRooms,
			RequiredStart:   rs.RequiredStart,
		})

		for _, g := range groups {
			inst.GroupSessions[g] = append(inst.GroupSessions[g], sessionIdx)
		}
	}

	for _, ra := range rawAvail {
		var idx int
		var found bool
		switch ra.OwnerKind {
		case model.OwnerTeacher:
			idx, found = teacherIndex[ra.OwnerID]
		case model.OwnerRoom:
			idx, found = roomIndex[ra.OwnerID]
		case model.OwnerGroup:
			idx, found = groupIndex[ra.OwnerID]
		case model.OwnerSession:
			idx, found = ra.OwnerID, ra.OwnerID >= 0 && ra.OwnerID < len(inst.Sessions)
		}
		if !found {
			derr.add("availability window: dangling %s reference %d", ra.OwnerKind, ra.OwnerID)
			continue
		}
		key := ownerKey{ra.OwnerKind, idx}
		inst.windows[key] = append(inst.windows[key], model.AvailabilityWindow{
			OwnerKind:      ra.OwnerKind,
			OwnerID:        idx,
			Day:            ra.Day,
			Interval:       ra.Interval,
			Priority:       ra.Priority,
			WeekID:         ra.WeekID,
			Reason:         ra.Reason,
			ForcePermanent: ra.ForcePermanent,
		})
	}

	inst.OrderingRules = deriveOrderingRules(inst.Sessions)

	if derr.HasErrors() {
		return nil, derr.AsError()
	}
	return inst, nil
}

// deriveOrderingRules builds the per-subject precedence pairs: every CM
// precedes every TD and every TP of the same subject, and every TD
// precedes every TP of the same subject.
func deriveOrderingRules(sessions []model.Session) []model.OrderingRule {
	var subjects []string
	seen := make(map[string]bool)
	cms, tds, tps := map[string][]int{}, map[string][]int{}, map[string][]int{}
	for _, s := range sessions {
		if !seen[s.Subject] {
			seen[s.Subject] = true
			subjects = append(subjects, s.Subject)
		}
		switch s.Type {
		case model.CM:
			cms[s.Subject] = append(cms[s.Subject], s.ID)
		case model.TD:
			tds[s.Subject] = append(tds[s.Subject], s.ID)
		case model.TP:
			tps[s.Subject] = append(tps[s.Subject], s.ID)
		}
	}

	var rules []model.OrderingRule
	for _, subject := range subjects {
		for _, before := range cms[subject] {
			for _, after := range tds[subject] {
				rules = append(rules, model.OrderingRule{Before: before, After: after})
			}
			for _, after := range tps[subject] {
				rules = append(rules, model.OrderingRule{Before: before, After: after})
			}
		}
	}
	for _, subject := range subjects {
		for _, before := range tds[subject] {
			for _, after := range tps[subject] {
				rules = append(rules, model.OrderingRule{Before: before, After: after})
			}
		}
	}
	return rules
}
