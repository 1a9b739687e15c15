package model

import "time"

// Config carries every tunable knob for the timetabling engine: slot
// grid shape, solver budget, and objective weights.
type Config struct {
	Days         int // D, typically 5
	SlotsPerDay  int // K, typically 20-24 half-hour slots
	LunchWindow  []int // offsets inside the configured lunch window

	TimeBudget time.Duration
	Workers    int

	LateThresholdOffset int
	LateWeight          int64
	CapacityWeight      int64
	MediumWeightMultiplier int64 // Medium windows weigh MediumWeightMultiplier x LateWeight

	// EmptyDayMeansUnavailable controls how a missing day is read: when
	// an owner appears in the availability table but a given day has no
	// entry, is the owner fully unavailable (true) or fully available
	// (false) that day.
	EmptyDayMeansUnavailable bool
}

// DefaultConfig returns the engine's baseline tuning.
func DefaultConfig() Config {
	return Config{
		Days:        5,
		SlotsPerDay: 23,
		LunchWindow: []int{8, 9},

		TimeBudget: 300 * time.Second,
		Workers:    8,

		LateThresholdOffset:    20,
		LateWeight:             500,
		CapacityWeight:         1_000_000,
		MediumWeightMultiplier: 10,

		EmptyDayMeansUnavailable: false,
	}
}

// TotalSlots is the number of global slots over the whole week.
func (c Config) TotalSlots() int {
	return c.Days * c.SlotsPerDay
}

// IsLunch reports whether offset falls inside the lunch window.
func (c Config) IsLunch(offset int) bool {
	for _, o := range c.LunchWindow {
		if o == offset {
			return true
		}
	}
	return false
}

// UsableOffsetsPerDay is the count of offsets not inside the lunch
// window.
func (c Config) UsableOffsetsPerDay() int {
	return c.SlotsPerDay - len(c.LunchWindow)
}

// TotalUsableSlots is UsableOffsetsPerDay x Days, the denominator used
// by the "group overbooked" feasibility check.
func (c Config) TotalUsableSlots() int {
	return c.UsableOffsetsPerDay() * c.Days
}

// SpansLunch reports whether a session of duration dur starting at
// offset would cover any lunch-window offset.
func (c Config) SpansLunch(offset, dur int) bool {
	for i := 0; i < dur; i++ {
		if c.IsLunch(offset + i) {
			return true
		}
	}
	return false
}

// FitsInDay reports whether a session of duration dur starting at
// offset fits entirely within one day.
func (c Config) FitsInDay(offset, dur int) bool {
	return offset+dur <= c.SlotsPerDay
}

// IsLegalStart combines the day-fit and lunch checks the Variable
// Builder uses to decide whether to materialize a start variable.
func (c Config) IsLegalStart(offset, dur int) bool {
	return c.FitsInDay(offset, dur) && !c.SpansLunch(offset, dur)
}
