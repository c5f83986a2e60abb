package sim

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitwall-sim/pitwall/sim/catalog"
)

func newTestAggregator(t *testing.T, req SimulationRequest, seed int64) (*OutcomeAggregator, *catalog.Catalog, float64) {
	t.Helper()
	cat := catalog.MustDefault()
	v, err := Validate(cat, req)
	require.NoError(t, err)
	reference, err := ReferenceRaceTime(cat, v)
	require.NoError(t, err)
	rng := NewPartitionedRNG(NewSimulationKey(seed)).ForSubsystem(SubsystemField)
	return NewOutcomeAggregator(cat.Field, v.Laps(), reference, rng), cat, reference
}

func TestFieldBaseline_SizeAndOrder(t *testing.T) {
	agg, cat, reference := newTestAggregator(t, monzaRequest(50), 42)
	field := agg.FieldBaseline()

	require.Len(t, field, cat.Field.Size-1)
	assert.True(t, sort.Float64sAreSorted(field))

	f := cat.Field
	assert.GreaterOrEqual(t, field[0], reference+50*(f.LeaderOffset-f.Jitter)-1e-6)
	assert.LessOrEqual(t, field[0], reference+50*(f.LeaderOffset+f.Jitter)+1e-6)
	slowest := reference + 50*(f.LeaderOffset+f.Step*float64(f.Size-2)+f.Jitter)
	assert.LessOrEqual(t, field[len(field)-1], slowest+1e-6)
}

func TestReferenceRaceTime_SingleLapIsFreshPace(t *testing.T) {
	cat := catalog.MustDefault()
	v, err := Validate(cat, monzaRequest(1))
	require.NoError(t, err)

	got, err := ReferenceRaceTime(cat, v)
	require.NoError(t, err)

	medium := cat.Compounds[catalog.CompoundMedium]
	assert.InDelta(t, 81.0*(1+medium.Grip.PaceOffset), got, 1e-9)
}

func TestReferenceRaceTime_IgnoresDriverAndStartingCompound(t *testing.T) {
	cat := catalog.MustDefault()
	a, err := Validate(cat, SimulationRequest{Driver: "verstappen", Track: "bahrain", Compound: "soft", Weather: "dry", Laps: 57})
	require.NoError(t, err)
	b, err := Validate(cat, SimulationRequest{Driver: "alonso", Track: "bahrain", Compound: "wet", Weather: "dry", Laps: 57})
	require.NoError(t, err)

	refA, err := ReferenceRaceTime(cat, a)
	require.NoError(t, err)
	refB, err := ReferenceRaceTime(cat, b)
	require.NoError(t, err)
	assert.Equal(t, refA, refB)
}

func TestReferenceRaceTime_IncludesStops(t *testing.T) {
	cat := catalog.MustDefault()
	v, err := Validate(cat, monzaRequest(50))
	require.NoError(t, err)

	got, err := ReferenceRaceTime(cat, v)
	require.NoError(t, err)

	// One scheduled stop at half distance on a monotonically slowing set.
	fresh := 81.0 * (1 + cat.Compounds[catalog.CompoundMedium].Grip.PaceOffset)
	assert.Greater(t, got, 50*fresh+cat.Tracks["monza"].PitLaneLoss+InOutLapPenalty)
}

func TestReferenceRaceTime_BrokenSuccessorIsSimulationError(t *testing.T) {
	cat := catalog.MustDefault()
	medium := cat.Compounds[catalog.CompoundMedium]
	medium.Next = "slick"
	cat.Compounds[catalog.CompoundMedium] = medium
	v, err := Validate(cat, monzaRequest(50))
	require.NoError(t, err)

	_, err = ReferenceRaceTime(cat, v)
	var simErr *SimulationError
	require.ErrorAs(t, err, &simErr)
	assert.Equal(t, 25, simErr.Lap)
}

func TestAggregate_Totals(t *testing.T) {
	agg, _, _ := newTestAggregator(t, monzaRequest(4), 1)
	laps := []float64{80.5, 81.0, 83.5, 80.0}
	events := []PitEvent{{LapNumber: 3, TimeLoss: 24}}

	out := agg.Aggregate(laps, events)

	assert.InDelta(t, 80.5+81.0+83.5+80.0+24, out.TotalTime, 1e-9)
	assert.InDelta(t, (80.5+81.0+83.5+80.0)/4, out.AvgLapTime, 1e-9)
	assert.GreaterOrEqual(t, out.FinalPosition, 1)
	assert.LessOrEqual(t, out.FinalPosition, 20)
}

func TestRank(t *testing.T) {
	field := []float64{100, 110, 120}
	tests := []struct {
		name  string
		total float64
		size  int
		want  int
	}{
		{"fastest", 90, 4, 1},
		{"tie goes to the car", 110, 4, 2},
		{"middle", 115, 4, 3},
		{"slowest", 500, 4, 4},
		{"clamped to field size", 500, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rank(tt.total, field, tt.size))
		})
	}
}

func TestAggregate_SlowCarClassifiedLast(t *testing.T) {
	agg, cat, _ := newTestAggregator(t, monzaRequest(10), 3)
	laps := make([]float64, 10)
	for i := range laps {
		laps[i] = 200
	}
	out := agg.Aggregate(laps, nil)
	assert.Equal(t, cat.Field.Size, out.FinalPosition)
}

func TestSimulate_SlowerDriverIsNotAlwaysFirstOnSlicks(t *testing.T) {
	s := NewSimulator(catalog.MustDefault())

	for _, track := range []string{"monza", "monaco", "bahrain"} {
		for _, compound := range []string{"soft", "medium", "hard"} {
			t.Run(track+"/"+compound, func(t *testing.T) {
				req := SimulationRequest{Driver: "alonso", Track: track, Compound: compound, Weather: "dry", Laps: 50}
				for seed := int64(1); seed <= 5; seed++ {
					r, err := s.Simulate(req, NewSimulationKey(seed))
					require.NoError(t, err)
					assert.Greater(t, r.FinalPosition, 1, "seed %d", seed)
				}
			})
		}
	}
}

func TestSimulate_FasterSkillNeverClassifiesWorse(t *testing.T) {
	// GIVEN drivers who differ only in pace, fastest first
	cat := catalog.MustDefault()
	offsets := []float64{-0.8, -0.5, -0.45, -0.3, -0.2, 0, 0.4}
	keys := make([]string, len(offsets))
	for i, off := range offsets {
		keys[i] = "driver" + string(rune('a'+i))
		cat.Drivers[keys[i]] = catalog.Driver{Name: keys[i], SkillOffset: off, Consistency: 0.94}
	}
	s := NewSimulator(cat)

	for _, track := range cat.TrackKeys() {
		for _, compound := range []string{"soft", "medium", "hard"} {
			for _, laps := range []int{10, 30, 57} {
				for seed := int64(1); seed <= 3; seed++ {
					// WHEN each runs the same race with the same seed
					prevPos, prevTotal := 0, 0.0
					for _, key := range keys {
						req := SimulationRequest{Driver: key, Track: track, Compound: compound, Weather: "dry", Laps: laps}
						r, err := s.Simulate(req, NewSimulationKey(seed))
						require.NoError(t, err)

						// THEN the slower driver is never classified ahead
						assert.GreaterOrEqual(t, r.FinalPosition, prevPos, "%s %s %d laps seed %d driver %s", track, compound, laps, seed, key)
						assert.Greater(t, r.TotalTime, prevTotal)
						prevPos, prevTotal = r.FinalPosition, r.TotalTime
					}
				}
			}
		}
	}

	// The spread of skill moves the classification.
	fastest := mustSimulateWith(t, s, SimulationRequest{Driver: keys[0], Track: "monza", Compound: "medium", Weather: "dry", Laps: 50}, 1)
	slowest := mustSimulateWith(t, s, SimulationRequest{Driver: keys[len(keys)-1], Track: "monza", Compound: "medium", Weather: "dry", Laps: 50}, 1)
	assert.Equal(t, 1, fastest.FinalPosition)
	assert.Greater(t, slowest.FinalPosition, fastest.FinalPosition+5)
}

func mustSimulateWith(t *testing.T, s *Simulator, req SimulationRequest, seed int64) *SimulationResult {
	t.Helper()
	r, err := s.Simulate(req, NewSimulationKey(seed))
	require.NoError(t, err)
	return r
}
