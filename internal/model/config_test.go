package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_IsLunch(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := DefaultConfig()
	require.True(cfg.IsLunch(8))
	require.True(cfg.IsLunch(9))
	require.False(cfg.IsLunch(7))
	require.False(cfg.IsLunch(10))
}

func TestConfig_SpansLunch(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := DefaultConfig()
	require.True(cfg.SpansLunch(7, 2))  // covers offsets 7,8
	require.False(cfg.SpansLunch(10, 2)) // covers offsets 10,11
	require.True(cfg.SpansLunch(9, 1))
}

func TestConfig_IsLegalStart(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := DefaultConfig()
	require.True(cfg.IsLegalStart(0, 2))
	require.False(cfg.IsLegalStart(cfg.SlotsPerDay-1, 2), "must not run past the end of the day")
	require.False(cfg.IsLegalStart(7, 2), "must not span the lunch window")
}

func TestConfig_TotalUsableSlots(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := DefaultConfig()
	require.Equal(cfg.Days*(cfg.SlotsPerDay-len(cfg.LunchWindow)), cfg.TotalUsableSlots())
}

func TestGlobalSlotRoundTrip(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := DefaultConfig()
	for day := 0; day < cfg.Days; day++ {
		for offset := 0; offset < cfg.SlotsPerDay; offset++ {
			g := GlobalSlot(day, offset, cfg.SlotsPerDay)
			gotDay, gotOffset := SplitGlobalSlot(g, cfg.SlotsPerDay)
			require.Equal(day, gotDay)
			require.Equal(offset, gotOffset)
		}
	}
}

func TestInterval_Contains(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	iv := Interval{Start: 2, End: 10}
	require.True(iv.Contains(2, 8))
	require.True(iv.Contains(5, 3))
	require.False(iv.Contains(1, 3))
	require.False(iv.Contains(8, 3))
}
