package sim

import (
	"github.com/pitwall-sim/pitwall/sim/catalog"
	"github.com/pitwall-sim/pitwall/sim/trace"
)

// LapRecord is the outcome of one lap.
type LapRecord struct {
	LapNumber    int              `json:"lap_number"`
	LapTime      float64          `json:"lap_time_seconds"`
	HealthAfter  float64          `json:"tyre_health_pct_after_lap"`
	PitTaken     bool             `json:"pit_taken"`
	Compound     catalog.Compound `json:"compound"`
	StintAgeLaps int              `json:"stint_age_laps"`
}

// PitEvent is one pit stop. TimeLoss is the stationary loss, which is not
// part of any lap time.
type PitEvent struct {
	LapNumber      int              `json:"lap_number"`
	TimeLoss       float64          `json:"time_loss_seconds"`
	CompoundBefore catalog.Compound `json:"compound_before"`
	CompoundAfter  catalog.Compound `json:"compound_after"`
	Rule           string           `json:"rule"`
}

// SimulationResult is the fully populated outcome of one race simulation.
// LapData and TyreData are index-aligned: index 0 is lap 1.
type SimulationResult struct {
	FinalPosition int
	AvgLapTime    float64
	TotalTime     float64
	PitStrategy   string
	LapData       []float64
	TyreData      []float64

	Laps      []LapRecord
	PitEvents []PitEvent
	Seed      int64
	FieldSize int
	Trace     *trace.SimulationTrace // nil unless decision tracing is enabled
}

// Response is the wire form of a SimulationResult, as rendered by clients.
type Response struct {
	FinalPosition int       `json:"final_position"`
	AvgLapTime    float64   `json:"avg_lap_time"`
	TotalTime     float64   `json:"total_time"`
	PitStrategy   string    `json:"pit_strategy"`
	LapData       []float64 `json:"lap_data"`
	TyreData      []float64 `json:"tyre_data"`
}

// Response converts the result into its wire form.
func (r *SimulationResult) Response() Response {
	return Response{
		FinalPosition: r.FinalPosition,
		AvgLapTime:    r.AvgLapTime,
		TotalTime:     r.TotalTime,
		PitStrategy:   r.PitStrategy,
		LapData:       r.LapData,
		TyreData:      r.TyreData,
	}
}
