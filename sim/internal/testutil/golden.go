// Package testutil provides shared test infrastructure for the procsim engine.
// It holds the golden scenario types and assertion helpers used across sim/
// and its sub-package tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one hand-verified scheduling scenario.
type GoldenTestCase struct {
	Name       string           `json:"name"`
	Policy     string           `json:"policy"`
	Quantum    int              `json:"quantum"`
	Preemptive bool             `json:"preemptive"`
	CPUs       int              `json:"cpus"`
	IODevices  int              `json:"io_devices"`
	Processes  []GoldenProcess  `json:"processes"`
	Expected   []GoldenOutcome  `json:"expected"`
	Metrics    GoldenRunMetrics `json:"metrics"`
}

// GoldenProcess mirrors a workload descriptor without importing sim.
type GoldenProcess struct {
	PID      string        `json:"pid"`
	Priority int           `json:"priority"`
	Arrival  int64         `json:"arrival_time"`
	Bursts   []GoldenBurst `json:"bursts"`
}

// GoldenBurst is a CPU burst when Kind is "cpu", otherwise an I/O burst on Device.
type GoldenBurst struct {
	Kind     string `json:"kind"`
	Device   string `json:"device,omitempty"`
	Duration int64  `json:"duration"`
}

// GoldenOutcome holds the expected per-process statistics.
type GoldenOutcome struct {
	PID           string `json:"pid"`
	FirstDispatch int64  `json:"first_dispatch_time"`
	EndTime       int64  `json:"end_time"`
	WaitTime      int64  `json:"wait_time"`
	IOTime        int64  `json:"io_time"`
	Preemptions   int    `json:"preemptions"`
}

// GoldenRunMetrics holds the expected run summary.
type GoldenRunMetrics struct {
	Makespan       int64   `json:"makespan"`
	AvgWait        float64 `json:"avg_wait"`
	AvgTurnaround  float64 `json:"avg_turnaround"`
	CPUUtilization float64 `json:"cpu_utilization"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
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
