// sim/simulator.go
package sim

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/pitwall-sim/pitwall/sim/catalog"
	"github.com/pitwall-sim/pitwall/sim/trace"
)

// Simulator runs single-car race simulations against a catalog.
// A Simulator holds no per-race state and is safe for concurrent use.
type Simulator struct {
	cat        *catalog.Catalog
	traceLevel trace.TraceLevel
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithTraceLevel enables decision tracing on every result.
func WithTraceLevel(level trace.TraceLevel) Option {
	return func(s *Simulator) {
		s.traceLevel = level
	}
}

// NewSimulator creates a simulator backed by cat. It panics on a nil catalog.
func NewSimulator(cat *catalog.Catalog, opts ...Option) *Simulator {
	if cat == nil {
		panic("NewSimulator: catalog must not be nil")
	}
	s := &Simulator{cat: cat, traceLevel: trace.TraceLevelNone}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the simulator validates against.
func (s *Simulator) Catalog() *catalog.Catalog {
	return s.cat
}

// Simulate validates req and runs the race lap by lap. Identical requests
// with the same key produce identical results.
//
// Each lap the pit planner decides first; a stop fits fresh tyres before the
// lap is timed, so the pit lap is run on the new set. Health is advanced
// after the lap time is taken.
func (s *Simulator) Simulate(req SimulationRequest, key SimulationKey) (*SimulationResult, error) {
	v, err := Validate(s.cat, req)
	if err != nil {
		return nil, err
	}

	rng := NewPartitionedRNG(key)
	planner := NewPitPlanner(s.cat, v)
	wear := NewDegradationModel(v.Track(), v.Weather(), v.WeatherSpec(), rng.ForSubsystem(SubsystemTyreWear))
	timing := NewLapTimeCalculator(v, rng.ForSubsystem(SubsystemLapNoise))
	reference, err := ReferenceRaceTime(s.cat, v)
	if err != nil {
		return nil, err
	}
	outcome := NewOutcomeAggregator(s.cat.Field, v.Laps(), reference, rng.ForSubsystem(SubsystemField))

	var st *trace.SimulationTrace
	if s.traceLevel.Enabled() {
		st = trace.NewSimulationTrace(s.traceLevel)
	}

	laps := v.Laps()
	result := &SimulationResult{
		LapData:   make([]float64, 0, laps),
		TyreData:  make([]float64, 0, laps),
		Laps:      make([]LapRecord, 0, laps),
		PitEvents: make([]PitEvent, 0),
		Seed:      key.Seed(),
		FieldSize: s.cat.Field.Size,
		Trace:     st,
	}

	tyres := NewTyreState(v.Compound())
	stintStart, stintHealth := 1, tyres.HealthPct

	for lap := 1; lap <= laps; lap++ {
		d, err := planner.Decide(lap, tyres)
		if err != nil {
			return nil, err
		}
		st.RecordPitDecision(trace.PitDecisionRecord{
			Lap:       lap,
			Compound:  string(tyres.Compound),
			HealthPct: tyres.HealthPct,
			Threshold: d.Threshold,
			Pitted:    d.Pit,
			Rule:      d.Rule,
		})

		if d.Pit {
			ev := planner.PitEvent(lap, tyres.Compound, d)
			result.PitEvents = append(result.PitEvents, ev)
			st.RecordStint(trace.StintRecord{
				Compound:    string(tyres.Compound),
				StartLap:    stintStart,
				EndLap:      lap - 1,
				StartHealth: stintHealth,
				EndHealth:   tyres.HealthPct,
			})
			logrus.Debugf("[lap %03d] pit (%s): %s -> %s at %.1f%% health",
				lap, d.Rule, tyres.Compound, d.Next, tyres.HealthPct)

			tyres = FreshTyres(d.Next)
			stintStart, stintHealth = lap, tyres.HealthPct
		}

		spec, ok := s.cat.Compound(tyres.Compound)
		if !ok {
			return nil, invariantf(lap, "compound %q not in catalog", tyres.Compound)
		}

		lapTime := timing.LapTime(tyres, spec, d.Pit)
		if math.IsNaN(lapTime) || math.IsInf(lapTime, 0) || lapTime <= 0 {
			return nil, invariantf(lap, "lap time %v is not a positive finite number", lapTime)
		}

		next := wear.Advance(tyres, spec)
		if math.IsNaN(next.HealthPct) || next.HealthPct < 0 || next.HealthPct > 100 {
			return nil, invariantf(lap, "tyre health %v outside [0, 100]", next.HealthPct)
		}
		if next.HealthPct > tyres.HealthPct {
			return nil, invariantf(lap, "tyre health rose within a stint (%v -> %v)", tyres.HealthPct, next.HealthPct)
		}
		tyres = next

		result.LapData = append(result.LapData, lapTime)
		result.TyreData = append(result.TyreData, tyres.HealthPct)
		result.Laps = append(result.Laps, LapRecord{
			LapNumber:    lap,
			LapTime:      lapTime,
			HealthAfter:  tyres.HealthPct,
			PitTaken:     d.Pit,
			Compound:     tyres.Compound,
			StintAgeLaps: tyres.StintAgeLaps,
		})
		logrus.Debugf("[lap %03d] %.3fs on %s, health %.1f%%", lap, lapTime, tyres.Compound, tyres.HealthPct)
	}

	st.RecordStint(trace.StintRecord{
		Compound:    string(tyres.Compound),
		StartLap:    stintStart,
		EndLap:      laps,
		StartHealth: stintHealth,
		EndHealth:   tyres.HealthPct,
	})

	out := outcome.Aggregate(result.LapData, result.PitEvents)
	result.AvgLapTime = out.AvgLapTime
	result.TotalTime = out.TotalTime
	result.FinalPosition = out.FinalPosition
	result.PitStrategy = DescribeStrategy(s.cat, v.Compound(), result.PitEvents)

	if err := checkResult(result, laps); err != nil {
		return nil, err
	}

	logrus.Infof("Simulated %d laps of %s for %s: P%d, %s",
		laps, v.TrackKey(), v.DriverKey(), result.FinalPosition, result.PitStrategy)
	return result, nil
}

// checkResult verifies the cross-field properties of a finished race.
func checkResult(r *SimulationResult, laps int) error {
	if len(r.LapData) != laps || len(r.TyreData) != laps {
		return invariantf(0, "expected %d laps, got %d lap times and %d tyre readings", laps, len(r.LapData), len(r.TyreData))
	}
	var lapSum float64
	for _, t := range r.LapData {
		lapSum += t
	}
	if r.TotalTime < lapSum {
		return invariantf(0, "total time %v below sum of lap times %v", r.TotalTime, lapSum)
	}
	if r.FinalPosition < 1 || r.FinalPosition > r.FieldSize {
		return invariantf(0, "final position %d outside [1, %d]", r.FinalPosition, r.FieldSize)
	}
	return nil
}
