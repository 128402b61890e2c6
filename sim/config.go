package sim

import (
	"fmt"

	"github.com/inference-sim/procsim/sim/trace"
)

// PolicyConfig selects and parameterizes a DispatchPolicy.
type PolicyConfig struct {
	Name           string // "fcfs" (default), "rr", "sjf", "srtf", "priority", "adaptive"
	Quantum        int    // rr: fixed slice (0 = per-process hint); adaptive: base slice
	Preemptive     bool   // priority only
	AdaptiveWindow int    // adaptive only; ticks of ready-queue history (0 = default 10)
}

// SchedulerConfig groups everything NewScheduler needs.
type SchedulerConfig struct {
	NumCPUs      int              // must be >= 1
	NumIODevices int              // may be 0 when no process has I/O bursts
	Policy       PolicyConfig     // dispatch policy selection
	TraceLevel   trace.TraceLevel // "none" (default) or "events"
}

// NewSchedulerConfig returns a config with one CPU, one I/O device and FCFS.
func NewSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		NumCPUs:      1,
		NumIODevices: 1,
		Policy:       PolicyConfig{Name: "fcfs"},
		TraceLevel:   trace.TraceLevelNone,
	}
}

// Validate checks slot counts and names without constructing anything.
func (c SchedulerConfig) Validate() error {
	if c.NumCPUs < 1 {
		return fmt.Errorf("%w: cpus must be >= 1, got %d", ErrInvalidConfig, c.NumCPUs)
	}
	if c.NumIODevices < 0 {
		return fmt.Errorf("%w: io devices must be >= 0, got %d", ErrInvalidConfig, c.NumIODevices)
	}
	if !IsValidPolicy(c.Policy.Name) {
		return fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, c.Policy.Name)
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("%w: unknown trace level %q", ErrInvalidConfig, c.TraceLevel)
	}
	return nil
}
