// Package trace provides decision-trace recording for pit strategy analysis.
// It stores plain data and does not import sim/ or sim/catalog/.
package trace

// PitDecisionRecord captures the pit planner's verdict for a single lap.
type PitDecisionRecord struct {
	Lap       int
	Compound  string
	HealthPct float64 // health at the moment of the decision
	Threshold float64 // critical health in force for this lap
	Pitted    bool
	Rule      string // name of the decision-table rule that produced the verdict
}

// StintRecord captures one completed stint.
type StintRecord struct {
	Compound    string
	StartLap    int
	EndLap      int
	StartHealth float64
	EndHealth   float64
}

// Laps returns the number of laps run in the stint.
func (s StintRecord) Laps() int {
	return s.EndLap - s.StartLap + 1
}
