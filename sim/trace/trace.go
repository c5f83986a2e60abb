package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every pit decision and stint.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// Enabled reports whether level records anything.
func (l TraceLevel) Enabled() bool {
	return l == TraceLevelDecisions
}

// SimulationTrace collects decision records during one race simulation.
type SimulationTrace struct {
	Level     TraceLevel
	Decisions []PitDecisionRecord
	Stints    []StintRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level TraceLevel) *SimulationTrace {
	return &SimulationTrace{
		Level:     level,
		Decisions: make([]PitDecisionRecord, 0),
		Stints:    make([]StintRecord, 0),
	}
}

// RecordPitDecision appends a pit decision record. Safe on a nil trace.
func (st *SimulationTrace) RecordPitDecision(record PitDecisionRecord) {
	if st == nil {
		return
	}
	st.Decisions = append(st.Decisions, record)
}

// RecordStint appends a completed stint. Safe on a nil trace.
func (st *SimulationTrace) RecordStint(record StintRecord) {
	if st == nil {
		return
	}
	st.Stints = append(st.Stints, record)
}
