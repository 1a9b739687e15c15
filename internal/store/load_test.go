package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udp-edt/timetable-cpsat/internal/model"
)

func baseSource() *StaticSource {
	src := NewStaticSource(5, 23, []int{8, 9})
	src.AddRoom(1, 30).AddRoom(2, 60)
	src.AddTeacher(1, "Dupont").AddTeacher(2, "Martin")
	src.AddGroup(1, "G1", nil, 25)
	return src
}

func TestLoad_BuildsDenseIndices(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	src := baseSource()
	src.AddSession(RawSession{
		ExternalID:      "CM1",
		Type:            model.CM,
		Subject:         "Math",
		Duration:        2,
		GroupIDs:        []int{1},
		AllowedTeachers: []int{1},
	})

	inst, err := Load(context.Background(), src, model.DefaultConfig(), 0)
	require.NoError(err)
	require.Len(inst.Rooms, 2)
	require.Len(inst.Teachers, 2)
	require.Len(inst.Groups, 1)
	require.Len(inst.Sessions, 1)
	require.Equal([]int{0, 1}, inst.Sessions[0].AllowedRooms, "no room restriction means every room is allowed")
}

func TestLoad_RoomRestrictionNarrowsAllowedRooms(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	src := baseSource()
	src.AddSession(RawSession{
		ExternalID:      "TP1",
		Type:            model.TP,
		Subject:         "Physics",
		Duration:        2,
		GroupIDs:        []int{1},
		AllowedTeachers: []int{1},
		RoomRestriction: []int{2},
	})

	inst, err := Load(context.Background(), src, model.DefaultConfig(), 0)
	require.NoError(err)
	require.Equal([]int{1}, inst.Sessions[0].AllowedRooms)
}

func TestLoad_RejectsSessionWithNoTeachers(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	src := baseSource()
	src.AddSession(RawSession{
		ExternalID: "CM1",
		Type:       model.CM,
		Subject:    "Math",
		Duration:   2,
		GroupIDs:   []int{1},
	})

	_, err := Load(context.Background(), src, model.DefaultConfig(), 0)
	require.Error(err)

	var derr *DataError
	require.ErrorAs(err, &derr)
}

func TestLoad_RejectsDanglingGroupReference(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	src := baseSource()
	src.AddSession(RawSession{
		ExternalID:      "CM1",
		Type:            model.CM,
		Subject:         "Math",
		Duration:        2,
		GroupIDs:        []int{999},
		AllowedTeachers: []int{1},
	})

	_, err := Load(context.Background(), src, model.DefaultConfig(), 0)
	require.Error(err)
}

func TestLoad_DerivesOrderingRulesBySubject(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	src := baseSource()
	src.AddSession(RawSession{ExternalID: "CM1", Type: model.CM, Subject: "Math", Duration: 2, GroupIDs: []int{1}, AllowedTeachers: []int{1}})
	src.AddSession(RawSession{ExternalID: "TD1", Type: model.TD, Subject: "Math", Duration: 2, GroupIDs: []int{1}, AllowedTeachers: []int{1}})
	src.AddSession(RawSession{ExternalID: "TP1", Type: model.TP, Subject: "Math", Duration: 2, GroupIDs: []int{1}, AllowedTeachers: []int{1}})

	inst, err := Load(context.Background(), src, model.DefaultConfig(), 0)
	require.NoError(err)
	require.Len(inst.OrderingRules, 3, "CM before TD, CM before TP, TD before TP")
}

func TestResolveAvailability_WeekScopedSupersedesPermanent(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	src := baseSource()
	week7 := 7
	src.AddAvailability(RawAvailability{OwnerKind: model.OwnerTeacher, OwnerID: 1, Day: 0, Interval: model.Interval{Start: 0, End: 23}, Priority: model.Hard})
	src.AddAvailability(RawAvailability{OwnerKind: model.OwnerTeacher, OwnerID: 1, Day: 0, Interval: model.Interval{Start: 10, End: 15}, Priority: model.Hard, WeekID: &week7})

	inst, err := Load(context.Background(), src, model.DefaultConfig(), week7)
	require.NoError(err)

	resolved := inst.ResolveAvailability(model.OwnerTeacher, 0, week7)
	require.Len(resolved, 1)
	require.Equal(model.Interval{Start: 10, End: 15}, resolved[0].Interval)
}

func TestGroupSessionsTransitive_IncludesParentAndChildren(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	src := NewStaticSource(5, 23, []int{8, 9})
	src.AddRoom(1, 30)
	src.AddTeacher(1, "Dupont")
	src.AddGroup(1, "G1", nil, 50)
	sub := 1
	src.AddGroup(2, "G1A", &sub, 25)
	src.AddSession(RawSession{ExternalID: "CM1", Type: model.CM, Subject: "Math", Duration: 2, GroupIDs: []int{1}, AllowedTeachers: []int{1}})
	src.AddSession(RawSession{ExternalID: "TD1", Type: model.TD, Subject: "Math", Duration: 2, GroupIDs: []int{2}, AllowedTeachers: []int{1}})

	inst, err := Load(context.Background(), src, model.DefaultConfig(), 0)
	require.NoError(err)

	transitive := inst.GroupSessionsTransitive(0) // G1 (parent)
	require.ElementsMatch([]int{0, 1}, transitive)
}
