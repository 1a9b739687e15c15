package engine

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/udp-edt/timetable-cpsat/internal/model"
	"github.com/udp-edt/timetable-cpsat/internal/store"
)

func TestRun_DataErrorShortCircuitsBeforeSolving(t *testing.T) {
	require := require.New(t)

	src := store.NewStaticSource(5, 23, []int{8, 9})
	src.AddRoom(1, 30)
	src.AddGroup(1, "G1", nil, 25)
	src.AddSession(store.RawSession{
		ExternalID: "CM1", Type: model.CM, Subject: "Math", Duration: 2,
		GroupIDs: []int{1}, AllowedTeachers: []int{999}, // dangling teacher
	})

	res, err := Run(context.Background(), src, model.DefaultConfig(), Options{WeekID: 0}, zap.NewNop())
	require.Error(err)
	require.Equal(model.StatusDataError, res.Status)
	require.Nil(res.Run)
}

func TestRun_StaticInfeasibleGroupOverbooked(t *testing.T) {
	require := require.New(t)

	src := store.NewStaticSource(5, 23, []int{8, 9})
	src.AddRoom(1, 30)
	src.AddTeacher(1, "Dupont")
	src.AddGroup(1, "G1", nil, 25)

	// Demand far exceeds the usable slots available over the week.
	cfg := model.DefaultConfig()
	cfg.TimeBudget = 5 * time.Second
	usable := cfg.TotalUsableSlots()
	for i := 0; i < usable+10; i++ {
		src.AddSession(store.RawSession{
			ExternalID: "CM" + strconv.Itoa(i), Type: model.CM, Subject: "Math", Duration: 1,
			GroupIDs: []int{1}, AllowedTeachers: []int{1},
		})
	}

	res, err := Run(context.Background(), src, cfg, Options{WeekID: 0}, zap.NewNop())
	require.NoError(err)
	require.NotEmpty(res.Diagnostic.GroupOverbooked)
	require.NotEqual(model.StatusOK, res.Status)
}
