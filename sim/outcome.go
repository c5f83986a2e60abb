package sim

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pitwall-sim/pitwall/sim/catalog"
)

// Outcome is the reduction of a finished race.
type Outcome struct {
	AvgLapTime    float64
	TotalTime     float64
	FinalPosition int
	Field         []float64 // competitor total times, fastest first
}

// OutcomeAggregator reduces lap times and pit events into totals and a
// classification against a synthetic competitor field.
type OutcomeAggregator struct {
	field     catalog.FieldSpec
	laps      int
	reference float64
	rng       *rand.Rand
}

// NewOutcomeAggregator creates an aggregator for a race of the given length.
// reference is the race's ReferenceRaceTime; rng supplies the competitor
// pace spread.
func NewOutcomeAggregator(field catalog.FieldSpec, laps int, reference float64, rng *rand.Rand) *OutcomeAggregator {
	return &OutcomeAggregator{
		field:     field,
		laps:      laps,
		reference: reference,
		rng:       rng,
	}
}

// FieldBaseline estimates the total race time of the other Size-1 cars,
// sorted fastest first. Competitor i laps LeaderOffset+Step*i seconds off
// the reference run, plus a random spread of at most Jitter.
func (a *OutcomeAggregator) FieldBaseline() []float64 {
	times := make([]float64, a.field.Size-1)
	for i := range times {
		offset := a.field.LeaderOffset + a.field.Step*float64(i) + symmetric(a.rng, a.field.Jitter)
		times[i] = a.reference + float64(a.laps)*offset
	}
	sort.Float64s(times)
	return times
}

// ReferenceRaceTime is the total time, pit losses included, of a zero-skill
// car without noise that starts on the field's reference compound for the
// race weather and stops by the default pit rules.
func ReferenceRaceTime(cat *catalog.Catalog, req ValidatedRequest) (float64, error) {
	ref := req
	ref.driverKey = ""
	ref.driver = catalog.Driver{Consistency: 1}
	ref.compound = cat.Field.ReferenceCompound(req.Weather())

	planner := NewPitPlanner(cat, ref)
	wear := NewDegradationModel(ref.Track(), ref.Weather(), ref.WeatherSpec(), nil)
	timing := NewLapTimeCalculator(ref, nil)

	var total float64
	tyres := NewTyreState(ref.Compound())
	for lap := 1; lap <= ref.Laps(); lap++ {
		d, err := planner.Decide(lap, tyres)
		if err != nil {
			return 0, err
		}
		if d.Pit {
			total += ref.Track().PitLaneLoss
			tyres = FreshTyres(d.Next)
		}
		spec, ok := cat.Compound(tyres.Compound)
		if !ok {
			return 0, invariantf(lap, "reference compound %q not in catalog", tyres.Compound)
		}
		total += math.Max(timing.PaceTime(tyres, spec, d.Pit), timing.Floor())
		tyres = wear.AdvanceExpected(tyres, spec)
	}
	return total, nil
}

// Aggregate computes the outcome of a race given its lap times and stops.
func (a *OutcomeAggregator) Aggregate(lapData []float64, events []PitEvent) Outcome {
	var lapSum, pitSum float64
	for _, t := range lapData {
		lapSum += t
	}
	for _, ev := range events {
		pitSum += ev.TimeLoss
	}
	total := lapSum + pitSum

	field := a.FieldBaseline()
	return Outcome{
		AvgLapTime:    Mean(lapData),
		TotalTime:     total,
		FinalPosition: Rank(total, field, a.field.Size),
		Field:         field,
	}
}

// Rank places total among the sorted competitor times. Ties go to the
// simulated car. The result is clamped to [1, fieldSize].
func Rank(total float64, field []float64, fieldSize int) int {
	pos := 1 + sort.SearchFloat64s(field, total)
	return max(1, min(pos, fieldSize))
}
