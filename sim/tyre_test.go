package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitwall-sim/pitwall/sim/catalog"
)

func newTestDegradation(t *testing.T, trackKey string, weather catalog.Weather, seed int64) *DegradationModel {
	t.Helper()
	cat := catalog.MustDefault()
	track, ok := cat.Track(trackKey)
	require.True(t, ok)
	rng := NewPartitionedRNG(NewSimulationKey(seed)).ForSubsystem(SubsystemTyreWear)
	return NewDegradationModel(track, weather, cat.Weather[weather], rng)
}

func TestNewTyreState_FullHealth(t *testing.T) {
	s := NewTyreState(catalog.CompoundSoft)
	assert.Equal(t, 100.0, s.HealthPct)
	assert.Equal(t, 0, s.StintAgeLaps)

	fresh := FreshTyres(catalog.CompoundHard)
	assert.Equal(t, 100-WarmUpPenalty, fresh.HealthPct)
	assert.Equal(t, catalog.CompoundHard, fresh.Compound)
}

func TestAdvance_MonotonicAndClamped(t *testing.T) {
	// GIVEN the fastest-wearing set on the most abrasive track
	m := newTestDegradation(t, "bahrain", catalog.WeatherDry, 11)
	spec := catalog.MustDefault().Compounds[catalog.CompoundSoft]
	state := NewTyreState(catalog.CompoundSoft)

	// WHEN run far past the point the set is destroyed
	for lap := 1; lap <= 100; lap++ {
		next := m.Advance(state, spec)

		// THEN health never increases and never leaves [0, 100]
		assert.LessOrEqual(t, next.HealthPct, state.HealthPct, "lap %d", lap)
		assert.GreaterOrEqual(t, next.HealthPct, 0.0, "lap %d", lap)
		assert.Equal(t, lap, next.StintAgeLaps)
		state = next
	}
	assert.Equal(t, 0.0, state.HealthPct)
}

func TestAdvance_JitterIsBounded(t *testing.T) {
	m := newTestDegradation(t, "monza", catalog.WeatherDry, 5)
	spec := catalog.MustDefault().Compounds[catalog.CompoundMedium]
	rate := m.WearRate(spec)

	for i := 0; i < 200; i++ {
		s := m.Advance(NewTyreState(catalog.CompoundMedium), spec)
		wear := 100 - s.HealthPct
		assert.InDelta(t, rate, wear, rate*WearJitterFraction+1e-9)
	}
}

func TestWearRate_Ordering(t *testing.T) {
	cat := catalog.MustDefault()
	m := newTestDegradation(t, "silverstone", catalog.WeatherDry, 1)

	soft := m.WearRate(cat.Compounds[catalog.CompoundSoft])
	medium := m.WearRate(cat.Compounds[catalog.CompoundMedium])
	hard := m.WearRate(cat.Compounds[catalog.CompoundHard])
	assert.Greater(t, soft, medium)
	assert.Greater(t, medium, hard)

	// More abrasive tracks wear the same compound faster.
	gentle := newTestDegradation(t, "monaco", catalog.WeatherDry, 1)
	assert.Greater(t, medium, gentle.WearRate(cat.Compounds[catalog.CompoundMedium]))

	// A wet-weather compound overheats on a dry track.
	wetOnDry := m.WearRate(cat.Compounds[catalog.CompoundWet])
	wetOnWet := newTestDegradation(t, "silverstone", catalog.WeatherWet, 1).WearRate(cat.Compounds[catalog.CompoundWet])
	assert.Greater(t, wetOnDry, wetOnWet)
}

func TestGripPenalty_MonotonicWithCliff(t *testing.T) {
	g := catalog.MustDefault().Compounds[catalog.CompoundMedium].Grip

	assert.Equal(t, 0.0, GripPenalty(g, 100))

	prev := GripPenalty(g, 100)
	for h := 99.0; h >= 0; h-- {
		p := GripPenalty(g, h)
		assert.Greater(t, p, prev, "penalty must grow as health drops (h=%v)", h)
		prev = p
	}

	// Above the cliff the curve is linear: equal steps cost the same.
	stepHigh := GripPenalty(g, 60) - GripPenalty(g, 70)
	stepMid := GripPenalty(g, 30) - GripPenalty(g, 40)
	assert.InDelta(t, stepHigh, stepMid, 1e-12)

	// Below the cliff the same step costs more.
	stepLow := GripPenalty(g, 0) - GripPenalty(g, 10)
	assert.Greater(t, stepLow, stepHigh)
}

func TestGripPenalty_ClampsHealth(t *testing.T) {
	g := catalog.MustDefault().Compounds[catalog.CompoundSoft].Grip
	assert.Equal(t, GripPenalty(g, 0), GripPenalty(g, -5))
	assert.Equal(t, 0.0, GripPenalty(g, 120))
}
