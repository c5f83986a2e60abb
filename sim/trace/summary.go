package trace

import "math"

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	LapsEvaluated int
	TotalStops    int
	StopsByRule   map[string]int // rule name → stops it triggered
	MinHealthSeen float64        // lowest health at any decision; 100 when nothing was recorded
	LongestStint  int
	ShortestStint int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		StopsByRule:   make(map[string]int),
		MinHealthSeen: 100,
	}
	if st == nil {
		return summary
	}

	summary.LapsEvaluated = len(st.Decisions)
	for _, d := range st.Decisions {
		summary.MinHealthSeen = math.Min(summary.MinHealthSeen, d.HealthPct)
		if d.Pitted {
			summary.TotalStops++
			summary.StopsByRule[d.Rule]++
		}
	}

	for i, s := range st.Stints {
		laps := s.Laps()
		if laps > summary.LongestStint {
			summary.LongestStint = laps
		}
		if i == 0 || laps < summary.ShortestStint {
			summary.ShortestStint = laps
		}
	}

	return summary
}
