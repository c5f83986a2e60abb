package sim

import (
	"math"
	"math/rand"

	"github.com/pitwall-sim/pitwall/sim/catalog"
)

const (
	// LapTimeFloorFraction is the fastest a lap may be, as a fraction of the track's base lap time.
	LapTimeFloorFraction = 0.8

	// InOutLapPenalty is the time lost on a pit lap to the in-lap and out-lap, in seconds.
	// The stationary loss is accounted separately in the pit event.
	InOutLapPenalty = 2.0

	baseNoiseSeconds       = 0.1
	inconsistencyNoiseGain = 4.0
)

// LapTimeCalculator derives single lap times for one driver, track and weather.
type LapTimeCalculator struct {
	track       catalog.Track
	driver      catalog.Driver
	weather     catalog.Weather
	weatherSpec catalog.WeatherSpec
	rng         *rand.Rand
}

// NewLapTimeCalculator creates a calculator for a validated request.
// rng supplies the lap-to-lap noise.
func NewLapTimeCalculator(req ValidatedRequest, rng *rand.Rand) *LapTimeCalculator {
	return &LapTimeCalculator{
		track:       req.Track(),
		driver:      req.Driver(),
		weather:     req.Weather(),
		weatherSpec: req.WeatherSpec(),
		rng:         rng,
	}
}

// WeatherModifier is the multiplicative pace effect of running spec in the
// race weather. Compounds built for other conditions pay a mismatch penalty.
func (c *LapTimeCalculator) WeatherModifier(spec catalog.CompoundSpec) float64 {
	return c.weatherSpec.PaceFactor * spec.Fit(c.weather).Pace * (1 + spec.Grip.PaceOffset)
}

// NoiseHalfWidth bounds the lap-time noise. Less consistent drivers vary more.
func (c *LapTimeCalculator) NoiseHalfWidth() float64 {
	return baseNoiseSeconds + inconsistencyNoiseGain*(1-c.driver.Consistency)
}

// Floor is the lowest lap time the calculator returns.
func (c *LapTimeCalculator) Floor() float64 {
	return c.track.BaseLapTime * LapTimeFloorFraction
}

// PaceTime is the lap time of a zero-skill car without noise. pitLap adds
// the in/out-lap penalty.
func (c *LapTimeCalculator) PaceTime(state TyreState, spec catalog.CompoundSpec, pitLap bool) float64 {
	lap := c.track.BaseLapTime * c.WeatherModifier(spec) * (1 + GripPenalty(spec.Grip, state.HealthPct))
	if pitLap {
		lap += InOutLapPenalty
	}
	return lap
}

// LapTime computes one lap on the given set. pitLap adds the in/out-lap penalty.
func (c *LapTimeCalculator) LapTime(state TyreState, spec catalog.CompoundSpec, pitLap bool) float64 {
	lap := c.PaceTime(state, spec, pitLap)
	lap += c.driver.SkillOffset
	lap += symmetric(c.rng, c.NoiseHalfWidth())
	return math.Max(lap, c.Floor())
}
