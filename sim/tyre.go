package sim

import (
	"math"
	"math/rand"

	"github.com/pitwall-sim/pitwall/sim/catalog"
)

const (
	// WarmUpPenalty is the health a fresh set gives up on its out-lap.
	WarmUpPenalty = 3.0

	// WearJitterFraction bounds the per-lap wear perturbation as a fraction of the wear.
	WearJitterFraction = 0.02
)

// TyreState is the state of the set currently on the car.
// HealthPct is in [0, 100] and never increases within a stint.
type TyreState struct {
	Compound     catalog.Compound
	StintAgeLaps int
	HealthPct    float64
}

// NewTyreState returns the set fitted on the grid at race start.
func NewTyreState(c catalog.Compound) TyreState {
	return TyreState{Compound: c, HealthPct: 100}
}

// FreshTyres returns a set fitted during a pit stop.
func FreshTyres(c catalog.Compound) TyreState {
	return TyreState{Compound: c, HealthPct: 100 - WarmUpPenalty}
}

// DegradationModel advances tyre health lap by lap for one race.
type DegradationModel struct {
	track   catalog.Track
	weather catalog.Weather
	wearMod float64
	rng     *rand.Rand
}

// NewDegradationModel creates a model for the given race conditions.
// rng supplies the wear jitter.
func NewDegradationModel(track catalog.Track, weather catalog.Weather, spec catalog.WeatherSpec, rng *rand.Rand) *DegradationModel {
	return &DegradationModel{
		track:   track,
		weather: weather,
		wearMod: spec.WearModifier,
		rng:     rng,
	}
}

// WearRate is the expected health loss per lap, before jitter.
func (m *DegradationModel) WearRate(spec catalog.CompoundSpec) float64 {
	abrasion := 0.6 + 0.8*m.track.Abrasiveness
	return spec.BaseWearRate * abrasion * m.wearMod * spec.Fit(m.weather).Wear
}

// Advance runs one lap on the current set.
func (m *DegradationModel) Advance(state TyreState, spec catalog.CompoundSpec) TyreState {
	wear := m.WearRate(spec)
	wear += symmetric(m.rng, wear*WearJitterFraction)
	return wearDown(state, wear)
}

// AdvanceExpected runs one lap at the expected wear rate, without jitter.
func (m *DegradationModel) AdvanceExpected(state TyreState, spec catalog.CompoundSpec) TyreState {
	return wearDown(state, m.WearRate(spec))
}

func wearDown(state TyreState, wear float64) TyreState {
	state.HealthPct = math.Max(0, state.HealthPct-wear)
	state.StintAgeLaps++
	return state
}

// GripPenalty converts tyre health into a fractional lap-time penalty.
// It grows linearly with lost health and quadratically once health drops
// below the cliff.
func GripPenalty(g catalog.GripCurve, health float64) float64 {
	health = math.Min(100, math.Max(0, health))
	penalty := g.LinearSlope * (100 - health)
	if health < g.CliffHealth {
		below := g.CliffHealth - health
		penalty += g.CliffSlope * below * below
	}
	return penalty
}
