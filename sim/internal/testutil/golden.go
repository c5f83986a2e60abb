// Package testutil provides shared test infrastructure for the race simulator.
// It holds the scenario dataset types and assertion helpers used by sim/
// and the HTTP server tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// ScenarioDataset represents the structure of testdata/scenarios.json.
type ScenarioDataset struct {
	Scenarios []Scenario `json:"scenarios"`
}

// Scenario is one reference race and what it must produce.
type Scenario struct {
	Name     string          `json:"name"`
	Request  ScenarioRequest `json:"request"`
	Seed     int64           `json:"seed"`
	Expected ScenarioOutcome `json:"expected"`
}

// ScenarioRequest mirrors the simulation request wire format.
type ScenarioRequest struct {
	Driver   string `json:"driver"`
	Track    string `json:"track"`
	Compound string `json:"compound"`
	Weather  string `json:"weather"`
	Laps     int    `json:"laps"`
}

// ScenarioOutcome holds the properties a scenario is checked against.
// Lap-level values depend on the seeded noise and are not pinned.
type ScenarioOutcome struct {
	PitStrategy   string  `json:"pit_strategy"`
	Stops         int     `json:"stops"`
	TotalTimeMinS float64 `json:"total_time_min_s"`
}

// LoadScenarioDataset loads the scenario dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadScenarioDataset(t *testing.T) *ScenarioDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "scenarios.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read scenario dataset: %v", err)
	}

	var dataset ScenarioDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse scenario dataset: %v", err)
	}
	if len(dataset.Scenarios) == 0 {
		t.Fatal("Scenario dataset is empty")
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
