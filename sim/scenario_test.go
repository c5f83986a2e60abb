package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pitwall-sim/pitwall/sim/internal/testutil"
)

func TestSimulate_ReferenceScenarios(t *testing.T) {
	dataset := testutil.LoadScenarioDataset(t)

	for _, sc := range dataset.Scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			req := SimulationRequest{
				Driver:   sc.Request.Driver,
				Track:    sc.Request.Track,
				Compound: sc.Request.Compound,
				Weather:  sc.Request.Weather,
				Laps:     sc.Request.Laps,
			}
			r := mustSimulate(t, req, sc.Seed)

			assertRaceProperties(t, req, r)
			assert.Equal(t, sc.Expected.PitStrategy, r.PitStrategy)
			assert.Len(t, r.PitEvents, sc.Expected.Stops)
			assert.Greater(t, r.TotalTime, sc.Expected.TotalTimeMinS)

			// Same seed, same race.
			again := mustSimulate(t, req, sc.Seed)
			testutil.AssertFloat64Equal(t, "total_time", r.TotalTime, again.TotalTime, 0)
			testutil.AssertFloat64Equal(t, "avg_lap_time", r.AvgLapTime, again.AvgLapTime, 0)
		})
	}
}
