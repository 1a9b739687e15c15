package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/udp-edt/timetable-cpsat/internal/model"
)

// FileSource reads a directory of flat JSON/CSV files into the raw
// shapes Load consumes — rooms from a CSV (code, capacity), everything
// else (teachers, groups, sessions, availability windows) from JSON.
type FileSource struct {
	Dir string

	days        int
	slotsPerDay int
	lunchWindow []int
}

// NewFileSource constructs a FileSource rooted at dir, with the
// week's slot-grid shape supplied directly since it isn't derivable
// from any one input file.
func NewFileSource(dir string, days, slotsPerDay int, lunchWindow []int) *FileSource {
	return &FileSource{Dir: dir, days: days, slotsPerDay: slotsPerDay, lunchWindow: lunchWindow}
}

func (s *FileSource) Days() int          { return s.days }
func (s *FileSource) SlotsPerDay() int    { return s.slotsPerDay }
func (s *FileSource) LunchWindow() []int  { return s.lunchWindow }

func (s *FileSource) path(name string) string {
	return filepath.Join(s.Dir, name)
}

// Rooms reads rooms.csv: "code,capacity" with a header row. The
// external ID is the CSV row's 1-based ordinal rather than the room
// code string, since the rest of the pipeline is integer-keyed end to
// end.
func (s *FileSource) Rooms() (map[int]int, error) {
	f, err := os.Open(s.path("rooms.csv"))
	if err != nil {
		return nil, fmt.Errorf("opening rooms.csv: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing rooms.csv: %w", err)
	}

	rooms := make(map[int]int)
	for i, rec := range records {
		if i == 0 || len(rec) < 2 {
			continue
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, fmt.Errorf("rooms.csv row %d: invalid capacity %q: %w", i, rec[1], err)
		}
		rooms[i] = capacity
	}
	return rooms, nil
}

type teacherJSON struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (s *FileSource) Teachers() (map[int]string, error) {
	var raw []teacherJSON
	if err := readJSON(s.path("teachers.json"), &raw); err != nil {
		return nil, err
	}
	teachers := make(map[int]string, len(raw))
	for _, t := range raw {
		teachers[t.ID] = t.Name
	}
	return teachers, nil
}

type groupJSON struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	ParentID     *int   `json:"parent_id"`
	StudentCount int    `json:"student_count"`
}

func (s *FileSource) Groups() ([]RawGroup, error) {
	var raw []groupJSON
	if err := readJSON(s.path("groups.json"), &raw); err != nil {
		return nil, err
	}
	groups := make([]RawGroup, len(raw))
	for i, g := range raw {
		groups[i] = RawGroup{ExternalID: g.ID, Name: g.Name, ParentID: g.ParentID, StudentCount: g.StudentCount}
	}
	return groups, nil
}

type sessionJSON struct {
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	Subject         string         `json:"subject"`
	Duration        int            `json:"duration"`
	GroupIDs        []int          `json:"group_ids"`
	AllowedTeachers []int          `json:"allowed_teachers"`
	RoomRestriction []int          `json:"room_restriction"`
	RequiredStart   *dayOffsetJSON `json:"required_start"`
}

type dayOffsetJSON struct {
	Day    int `json:"day"`
	Offset int `json:"offset"`
}

func (s *FileSource) Sessions() ([]RawSession, error) {
	var raw []sessionJSON
	if err := readJSON(s.path("sessions.json"), &raw); err != nil {
		return nil, err
	}
	sessions := make([]RawSession, len(raw))
	for i, r := range raw {
		var required *model.DayOffset
		if r.RequiredStart != nil {
			required = &model.DayOffset{Day: r.RequiredStart.Day, Offset: r.RequiredStart.Offset}
		}
		sessions[i] = RawSession{
			ExternalID:      r.ID,
			Type:            parseSessionType(r.Type),
			Subject:         r.Subject,
			Duration:        r.Duration,
			GroupIDs:        r.GroupIDs,
			AllowedTeachers: r.AllowedTeachers,
			RequiredStart:   required,
			RoomRestriction: r.RoomRestriction,
		}
	}
	return sessions, nil
}

type availabilityJSON struct {
	OwnerKind      string `json:"owner_kind"`
	OwnerID        int    `json:"owner_id"`
	Day            int    `json:"day"`
	Start          int    `json:"start"`
	End            int    `json:"end"`
	Priority       string `json:"priority"`
	WeekID         *int   `json:"week_id"`
	Reason         string `json:"reason"`
	ForcePermanent bool   `json:"force_permanent"`
}

func (s *FileSource) Availability() ([]RawAvailability, error) {
	path := s.path("availability.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var raw []availabilityJSON
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	out := make([]RawAvailability, len(raw))
	for i, r := range raw {
		out[i] = RawAvailability{
			OwnerKind:      parseOwnerKind(r.OwnerKind),
			OwnerID:        r.OwnerID,
			Day:            r.Day,
			Interval:       model.Interval{Start: r.Start, End: r.End},
			Priority:       parsePriority(r.Priority),
			WeekID:         r.WeekID,
			Reason:         r.Reason,
			ForcePermanent: r.ForcePermanent,
		}
	}
	return out, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func parseSessionType(s string) model.SessionType {
	switch strings.ToUpper(s) {
	case "CM":
		return model.CM
	case "TD":
		return model.TD
	case "TP":
		return model.TP
	case "SAE":
		return model.SAE
	case "EXAM":
		return model.Exam
	default:
		return model.Other
	}
}

func parseOwnerKind(s string) model.OwnerKind {
	switch strings.ToLower(s) {
	case "teacher":
		return model.OwnerTeacher
	case "room":
		return model.OwnerRoom
	case "group":
		return model.OwnerGroup
	default:
		return model.OwnerSession
	}
}

func parsePriority(s string) model.Priority {
	switch strings.ToLower(s) {
	case "hard":
		return model.Hard
	case "medium":
		return model.Medium
	default:
		return model.Soft
	}
}

var _ Source = (*FileSource)(nil)
