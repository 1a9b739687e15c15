package assignment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udp-edt/timetable-cpsat/internal/constraints"
	"github.com/udp-edt/timetable-cpsat/internal/cpsat"
	"github.com/udp-edt/timetable-cpsat/internal/model"
	"github.com/udp-edt/timetable-cpsat/internal/store"
	"github.com/udp-edt/timetable-cpsat/internal/variables"
)

func TestExtract_OneAssignmentPerSessionAndOccupiedSlots(t *testing.T) {
	require := require.New(t)

	src := store.NewStaticSource(5, 23, []int{8, 9})
	src.AddRoom(1, 30)
	src.AddTeacher(1, "Dupont")
	src.AddGroup(1, "G1", nil, 25)
	src.AddSession(store.RawSession{
		ExternalID: "CM1", Type: model.CM, Subject: "Math", Duration: 2,
		GroupIDs: []int{1}, AllowedTeachers: []int{1},
	})

	inst, err := store.Load(context.Background(), src, model.DefaultConfig(), 0)
	require.NoError(err)

	m := cpsat.NewModel("test")
	vars := variables.Build(m, inst)
	compiler := constraints.New(m, inst, vars, nil)
	penalties := compiler.Compile()

	var terms []cpsat.WeightedTerm
	terms = append(terms, penalties.Capacity...)
	terms = append(terms, penalties.Late...)
	terms = append(terms, penalties.Medium...)
	m.Minimize(terms)

	res := m.Solve(inst.Config.TimeBudget, inst.Config.Workers)
	if !res.Feasible() {
		t.Skip("solver backend unavailable in this environment")
	}

	run := Extract(inst, vars, res)
	require.Len(run.Assignments, 1)

	a := run.Assignments[0]
	require.Equal(0, a.SessionID)
	require.Equal("CM1", a.ExternalID)
	require.Equal(2, a.DurationSlots)

	global := model.GlobalSlot(a.Day, a.StartOffset, inst.Config.SlotsPerDay)
	require.Contains(run.Occupancy[global], 0)
	require.Contains(run.Occupancy[global+1], 0)
}
