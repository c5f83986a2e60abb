package sim

import (
	"fmt"
	"io"

	"github.com/pitwall-sim/pitwall/sim/trace"
)

// Print writes a human-readable race summary to w.
func (r *SimulationResult) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Race Summary ===")
	fmt.Fprintf(w, "Final Position       : P%d of %d\n", r.FinalPosition, r.FieldSize)
	fmt.Fprintf(w, "Total Time           : %s\n", formatRaceTime(r.TotalTime))
	fmt.Fprintf(w, "Average Lap          : %.3f s\n", r.AvgLapTime)
	fmt.Fprintf(w, "Strategy             : %s\n", r.PitStrategy)
	fmt.Fprintf(w, "Seed                 : %d\n", r.Seed)

	if len(r.LapData) > 0 {
		best, bestLap := r.LapData[0], 1
		for i, t := range r.LapData {
			if t < best {
				best, bestLap = t, i+1
			}
		}
		fmt.Fprintf(w, "Fastest Lap          : %.3f s (lap %d)\n", best, bestLap)
		fmt.Fprintf(w, "Median Lap           : %.3f s\n", Percentile(r.LapData, 50))
		fmt.Fprintf(w, "P90 Lap              : %.3f s\n", Percentile(r.LapData, 90))
		fmt.Fprintf(w, "Final Tyre Health    : %.1f%%\n", r.TyreData[len(r.TyreData)-1])
	}

	if r.Trace != nil {
		s := trace.Summarize(r.Trace)
		fmt.Fprintln(w, "=== Decision Trace ===")
		fmt.Fprintf(w, "Laps Evaluated       : %d\n", s.LapsEvaluated)
		fmt.Fprintf(w, "Lowest Health Seen   : %.1f%%\n", s.MinHealthSeen)
		fmt.Fprintf(w, "Longest Stint        : %d laps\n", s.LongestStint)
		fmt.Fprintf(w, "Shortest Stint       : %d laps\n", s.ShortestStint)
		for _, rule := range []string{RuleThreshold, RuleScheduled} {
			fmt.Fprintf(w, "Stops (%-9s)     : %d\n", rule, s.StopsByRule[rule])
		}
	}
}

// formatRaceTime renders seconds as h:mm:ss.mmm, dropping the hour when zero.
func formatRaceTime(seconds float64) string {
	ms := int64(seconds*1000 + 0.5)
	h := ms / 3_600_000
	m := (ms / 60_000) % 60
	s := (ms / 1000) % 60
	frac := ms % 1000
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, frac)
	}
	return fmt.Sprintf("%d:%02d.%03d", m, s, frac)
}
