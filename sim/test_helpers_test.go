package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pitwall-sim/pitwall/sim/catalog"
)

// monzaRequest is the reference race: a medium-tyre start in the dry.
func monzaRequest(laps int) SimulationRequest {
	return SimulationRequest{
		Driver:   "verstappen",
		Track:    "monza",
		Compound: "medium",
		Weather:  "dry",
		Laps:     laps,
	}
}

// mustSimulate runs req against the default catalog and fails the test on error.
func mustSimulate(t *testing.T, req SimulationRequest, seed int64, opts ...Option) *SimulationResult {
	t.Helper()
	s := NewSimulator(catalog.MustDefault(), opts...)
	result, err := s.Simulate(req, NewSimulationKey(seed))
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}
