package variables

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udp-edt/timetable-cpsat/internal/cpsat"
	"github.com/udp-edt/timetable-cpsat/internal/model"
	"github.com/udp-edt/timetable-cpsat/internal/store"
)

func oneSessionInstance(t *testing.T) *store.Instance {
	t.Helper()
	src := store.NewStaticSource(5, 23, []int{8, 9})
	src.AddRoom(1, 30)
	src.AddTeacher(1, "Dupont")
	src.AddGroup(1, "G1", nil, 25)
	src.AddSession(store.RawSession{
		ExternalID: "CM1", Type: model.CM, Subject: "Math", Duration: 2,
		GroupIDs: []int{1}, AllowedTeachers: []int{1},
	})

	inst, err := store.Load(context.Background(), src, model.DefaultConfig(), 0)
	require.NoError(t, err)
	return inst
}

func TestBuild_PrunesIllegalStarts(t *testing.T) {
	require := require.New(t)
	inst := oneSessionInstance(t)
	m := cpsat.NewModel("test")
	set := Build(m, inst)

	cfg := inst.Config
	for _, g := range set.StartSlots[0] {
		_, offset := model.SplitGlobalSlot(g, cfg.SlotsPerDay)
		require.True(cfg.IsLegalStart(offset, inst.Sessions[0].Duration))
	}
}

func TestBuild_EveryGlobalSlotHasOccVar(t *testing.T) {
	require := require.New(t)
	inst := oneSessionInstance(t)
	m := cpsat.NewModel("test")
	set := Build(m, inst)

	require.Len(set.Occ[0], inst.Config.TotalSlots())
}

func TestBuild_RoomAndTeachVarsCoverAllowedSets(t *testing.T) {
	require := require.New(t)
	inst := oneSessionInstance(t)
	m := cpsat.NewModel("test")
	set := Build(m, inst)

	require.Len(set.Room[0], len(inst.Sessions[0].AllowedRooms))
	require.Len(set.Teach[0], len(inst.Sessions[0].AllowedTeachers))
}
