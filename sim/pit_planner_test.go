package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitwall-sim/pitwall/sim/catalog"
)

func newTestPlanner(t *testing.T, req SimulationRequest) (*PitPlanner, *catalog.Catalog) {
	t.Helper()
	cat := catalog.MustDefault()
	v, err := Validate(cat, req)
	require.NoError(t, err)
	return NewPitPlanner(cat, v), cat
}

func TestDecisionTable_RuleOrder(t *testing.T) {
	worn := TyreState{Compound: catalog.CompoundMedium, HealthPct: 10, StintAgeLaps: 30}
	used := TyreState{Compound: catalog.CompoundMedium, HealthPct: 60, StintAgeLaps: 20}
	fresh := TyreState{Compound: catalog.CompoundMedium, HealthPct: 97, StintAgeLaps: 1}

	tests := []struct {
		name     string
		ctx      PitContext
		wantRule string
		wantPit  bool
	}{
		{"first lap never pits", PitContext{Lap: 1, TotalLaps: 50, Tyres: worn, Threshold: 25}, RuleRaceStart, false},
		{"final lap never pits", PitContext{Lap: 50, TotalLaps: 50, Tyres: worn, Threshold: 25}, RuleFinalLap, false},
		{"worn tyres pit", PitContext{Lap: 30, TotalLaps: 50, Tyres: worn, Threshold: 25}, RuleThreshold, true},
		{"threshold is inclusive", PitContext{Lap: 30, TotalLaps: 50, Tyres: TyreState{HealthPct: 25}, Threshold: 25}, RuleThreshold, true},
		{"threshold beats schedule", PitContext{Lap: 25, TotalLaps: 50, Tyres: worn, Threshold: 25, Scheduled: true}, RuleThreshold, true},
		{"scheduled stop", PitContext{Lap: 25, TotalLaps: 50, Tyres: used, Threshold: 25, Scheduled: true}, RuleScheduled, true},
		{"schedule skipped on fresh stint", PitContext{Lap: 25, TotalLaps: 50, Tyres: fresh, Threshold: 25, Scheduled: true}, RuleStayOut, false},
		{"schedule skipped when it would refit the same compound", PitContext{Lap: 25, TotalLaps: 50, Tyres: used, Threshold: 25, Scheduled: true, Refit: true}, RuleStayOut, false},
		{"threshold still refits a worn set", PitContext{Lap: 25, TotalLaps: 50, Tyres: worn, Threshold: 25, Scheduled: true, Refit: true}, RuleThreshold, true},
		{"healthy tyres stay out", PitContext{Lap: 25, TotalLaps: 50, Tyres: used, Threshold: 25}, RuleStayOut, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := DefaultDecisionTable.Decide(tt.ctx)
			assert.Equal(t, tt.wantRule, rule.Name)
			assert.Equal(t, tt.wantPit, rule.Pit)
		})
	}
}

func TestDecisionTable_EmptyStaysOut(t *testing.T) {
	rule := DecisionTable{}.Decide(PitContext{Lap: 3, TotalLaps: 10})
	assert.Equal(t, RuleStayOut, rule.Name)
	assert.False(t, rule.Pit)
}

func TestScheduledLaps(t *testing.T) {
	tests := []struct {
		name     string
		compound catalog.Compound
		laps     int
		want     []int
	}{
		{"medium half distance", catalog.CompoundMedium, 50, []int{25}},
		{"hard sixty percent", catalog.CompoundHard, 50, []int{30}},
		{"soft short race one stop", catalog.CompoundSoft, 15, []int{7}},
		{"medium short race", catalog.CompoundMedium, 9, nil},
		{"wet runs to threshold", catalog.CompoundWet, 50, nil},
		{"intermediate runs to threshold", catalog.CompoundIntermediate, 50, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScheduledLaps(DefaultSchedule, tt.compound, tt.laps))
		})
	}
}

func TestScheduledLaps_SoftLongRaceTwoStops(t *testing.T) {
	laps := ScheduledLaps(DefaultSchedule, catalog.CompoundSoft, 60)
	require.Len(t, laps, 2)
	assert.InDelta(t, 20, laps[0], 1)
	assert.InDelta(t, 40, laps[1], 1)
}

func TestScheduledLaps_DropsOutOfRangeAndDuplicates(t *testing.T) {
	schedule := []ScheduleEntry{{Compound: catalog.CompoundSoft, MinLaps: 1, Fractions: []float64{0.01, 0.5, 0.5, 1.0}}}
	assert.Equal(t, []int{5}, ScheduledLaps(schedule, catalog.CompoundSoft, 10))
}

func TestCriticalThreshold_AbrasivenessBands(t *testing.T) {
	spec := catalog.CompoundSpec{CriticalHealth: 25}
	assert.Equal(t, 30.0, CriticalThreshold(spec, 0.95))
	assert.Equal(t, 30.0, CriticalThreshold(spec, 0.7))
	assert.Equal(t, 25.0, CriticalThreshold(spec, 0.55))
	assert.Equal(t, 22.0, CriticalThreshold(spec, 0.35))
}

func TestPitPlanner_NextCompound(t *testing.T) {
	p, cat := newTestPlanner(t, monzaRequest(50))
	assert.Equal(t, catalog.CompoundMedium, p.NextCompound(cat.Compounds[catalog.CompoundSoft]))
	assert.Equal(t, catalog.CompoundHard, p.NextCompound(cat.Compounds[catalog.CompoundMedium]))
	assert.Equal(t, catalog.CompoundMedium, p.NextCompound(cat.Compounds[catalog.CompoundHard]))
	assert.Equal(t, catalog.CompoundHard, p.NextCompound(cat.Compounds[catalog.CompoundWet]))

	// Wet weather forces the wet compound regardless of what is exhausted.
	req := monzaRequest(50)
	req.Weather = "wet"
	wet, _ := newTestPlanner(t, req)
	assert.Equal(t, catalog.CompoundWet, wet.NextCompound(cat.Compounds[catalog.CompoundSoft]))
	assert.Equal(t, catalog.CompoundWet, wet.NextCompound(cat.Compounds[catalog.CompoundWet]))
}

func TestPitPlanner_Decide(t *testing.T) {
	p, cat := newTestPlanner(t, monzaRequest(50))

	d, err := p.Decide(25, TyreState{Compound: catalog.CompoundMedium, HealthPct: 50, StintAgeLaps: 24})
	require.NoError(t, err)
	assert.True(t, d.Pit)
	assert.Equal(t, RuleScheduled, d.Rule)
	assert.Equal(t, catalog.CompoundHard, d.Next)
	assert.Equal(t, cat.Compounds[catalog.CompoundMedium].CriticalHealth, d.Threshold)

	d, err = p.Decide(26, TyreState{Compound: catalog.CompoundHard, HealthPct: 95, StintAgeLaps: 1})
	require.NoError(t, err)
	assert.False(t, d.Pit)
	assert.Empty(t, d.Next)

	ev := p.PitEvent(25, catalog.CompoundMedium, PitDecision{Pit: true, Rule: RuleScheduled, Next: catalog.CompoundHard})
	assert.Equal(t, cat.Tracks["monza"].PitLaneLoss, ev.TimeLoss)
	assert.Equal(t, catalog.CompoundHard, ev.CompoundAfter)
}

func TestPitPlanner_Decide_NoScheduledRefitInTheWet(t *testing.T) {
	// Soft over 40 laps schedules stops on laps 13 and 26. Once the rain has
	// forced wets on, the second stop would only refit wets.
	p, _ := newTestPlanner(t, SimulationRequest{Driver: "hamilton", Track: "silverstone", Compound: "soft", Weather: "wet", Laps: 40})

	d, err := p.Decide(13, TyreState{Compound: catalog.CompoundSoft, HealthPct: 70, StintAgeLaps: 12})
	require.NoError(t, err)
	assert.True(t, d.Pit)
	assert.Equal(t, RuleScheduled, d.Rule)
	assert.Equal(t, catalog.CompoundWet, d.Next)

	d, err = p.Decide(26, TyreState{Compound: catalog.CompoundWet, HealthPct: 70, StintAgeLaps: 13})
	require.NoError(t, err)
	assert.False(t, d.Pit)
	assert.Equal(t, RuleStayOut, d.Rule)

	d, err = p.Decide(30, TyreState{Compound: catalog.CompoundWet, HealthPct: 20, StintAgeLaps: 17})
	require.NoError(t, err)
	assert.True(t, d.Pit)
	assert.Equal(t, RuleThreshold, d.Rule)
	assert.Equal(t, catalog.CompoundWet, d.Next)
}

func TestPitPlanner_Decide_UnknownCompound(t *testing.T) {
	p, _ := newTestPlanner(t, monzaRequest(50))
	_, err := p.Decide(10, TyreState{Compound: "slick", HealthPct: 50})

	var simErr *SimulationError
	require.ErrorAs(t, err, &simErr)
	assert.Equal(t, 10, simErr.Lap)
}

func TestDescribeStrategy(t *testing.T) {
	cat := catalog.MustDefault()

	assert.Equal(t, "0-Stop: Medium to the flag", DescribeStrategy(cat, catalog.CompoundMedium, nil))
	assert.Equal(t, "1-Stop: Lap 22 (Medium → Hard)", DescribeStrategy(cat, catalog.CompoundMedium, []PitEvent{
		{LapNumber: 22, CompoundBefore: catalog.CompoundMedium, CompoundAfter: catalog.CompoundHard},
	}))
	assert.Equal(t, "2-Stop: Lap 14 (Soft → Medium), Lap 30 (Medium → Hard)", DescribeStrategy(cat, catalog.CompoundSoft, []PitEvent{
		{LapNumber: 14, CompoundBefore: catalog.CompoundSoft, CompoundAfter: catalog.CompoundMedium},
		{LapNumber: 30, CompoundBefore: catalog.CompoundMedium, CompoundAfter: catalog.CompoundHard},
	}))
}
