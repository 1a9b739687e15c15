package constraints

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udp-edt/timetable-cpsat/internal/cpsat"
	"github.com/udp-edt/timetable-cpsat/internal/model"
	"github.com/udp-edt/timetable-cpsat/internal/store"
	"github.com/udp-edt/timetable-cpsat/internal/variables"
)

func buildInstance(t *testing.T, configure func(*store.StaticSource)) *store.Instance {
	t.Helper()
	src := store.NewStaticSource(5, 23, []int{8, 9})
	configure(src)
	inst, err := store.Load(context.Background(), src, model.DefaultConfig(), 0)
	require.NoError(t, err)
	return inst
}

func TestCompile_CapacitySoftPenalizesUndersizedRoom(t *testing.T) {
	require := require.New(t)

	inst := buildInstance(t, func(src *store.StaticSource) {
		src.AddRoom(1, 10) // too small
		src.AddRoom(2, 60)
		src.AddTeacher(1, "Dupont")
		src.AddGroup(1, "G1", nil, 50)
		src.AddSession(store.RawSession{
			ExternalID: "CM1", Type: model.CM, Subject: "Math", Duration: 2,
			GroupIDs: []int{1}, AllowedTeachers: []int{1},
		})
	})

	m := cpsat.NewModel("test")
	vars := variables.Build(m, inst)
	compiler := New(m, inst, vars, nil)
	penalties := compiler.Compile()

	require.Len(penalties.Capacity, 1, "only the undersized room should be penalized")
	require.Equal(inst.Config.CapacityWeight, penalties.Capacity[0].Weight)
}

func TestCompile_LateSoftPenalizesLateStarts(t *testing.T) {
	require := require.New(t)

	inst := buildInstance(t, func(src *store.StaticSource) {
		src.AddRoom(1, 30)
		src.AddTeacher(1, "Dupont")
		src.AddGroup(1, "G1", nil, 25)
		src.AddSession(store.RawSession{
			ExternalID: "CM1", Type: model.CM, Subject: "Math", Duration: 2,
			GroupIDs: []int{1}, AllowedTeachers: []int{1},
		})
	})

	m := cpsat.NewModel("test")
	vars := variables.Build(m, inst)
	compiler := New(m, inst, vars, nil)
	penalties := compiler.Compile()

	require.NotEmpty(penalties.Late)
	for _, term := range penalties.Late {
		require.Equal(inst.Config.LateWeight, term.Weight)
	}
}

func TestCompile_DisabledFamilyIsSkipped(t *testing.T) {
	require := require.New(t)

	inst := buildInstance(t, func(src *store.StaticSource) {
		src.AddRoom(1, 30)
		src.AddTeacher(1, "Dupont")
		src.AddGroup(1, "G1", nil, 25)
		src.AddSession(store.RawSession{
			ExternalID: "CM1", Type: model.CM, Subject: "Math", Duration: 2,
			GroupIDs: []int{1}, AllowedTeachers: []int{1},
		})
	})

	m := cpsat.NewModel("test")
	vars := variables.Build(m, inst)
	compiler := New(m, inst, vars, []Family{FamilyCapacitySoft, FamilyLateSoft})
	penalties := compiler.Compile()

	require.Empty(penalties.Capacity)
	require.Empty(penalties.Late)
}

func TestHardIntervalsForDay_NeverMentionedOwnerIsFullyAvailable(t *testing.T) {
	require := require.New(t)

	inst := buildInstance(t, func(src *store.StaticSource) {
		src.AddRoom(1, 30)
		src.AddTeacher(1, "Dupont")
		src.AddGroup(1, "G1", nil, 25)
	})

	ivs := hardIntervalsForDay(inst, model.OwnerTeacher, 0, 0, 2)
	require.Equal([]model.Interval{{Start: 0, End: inst.Config.SlotsPerDay}}, ivs)
}

func TestHardIntervalsForDay_EmptyDayConventionAppliesOnlyWhenOwnerIsMentioned(t *testing.T) {
	require := require.New(t)

	inst := buildInstance(t, func(src *store.StaticSource) {
		src.AddRoom(1, 30)
		src.AddTeacher(1, "Dupont")
		src.AddGroup(1, "G1", nil, 25)
		src.AddAvailability(store.RawAvailability{
			OwnerKind: model.OwnerTeacher, OwnerID: 1, Day: 0,
			Interval: model.Interval{Start: 0, End: 10}, Priority: model.Hard,
		})
	})
	inst.Config.EmptyDayMeansUnavailable = true

	// Day 0 has a Hard window: must return it unchanged.
	ivs := hardIntervalsForDay(inst, model.OwnerTeacher, 0, 0, 0)
	require.Equal([]model.Interval{{Start: 0, End: 10}}, ivs)

	// Day 2 has no entry at all, but the teacher IS mentioned elsewhere:
	// EmptyDayMeansUnavailable applies.
	ivs = hardIntervalsForDay(inst, model.OwnerTeacher, 0, 0, 2)
	require.Empty(ivs)
}
