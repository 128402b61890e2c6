package sim

import (
	"testing"

	"github.com/inference-sim/procsim/sim/internal/testutil"
)

// cpuOnly builds a descriptor with a single CPU burst.
func cpuOnly(id string, arrival, duration int64) ProcessDescriptor {
	return ProcessDescriptor{ID: id, ArrivalTime: arrival, Bursts: []Burst{CPUBurst(duration)}}
}

// newTestScheduler builds a scheduler and adds every descriptor, failing the test on error.
func newTestScheduler(t *testing.T, cfg SchedulerConfig, descs ...ProcessDescriptor) *Scheduler {
	t.Helper()
	s, err := NewScheduler(cfg)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	for _, d := range descs {
		if err := s.AddProcess(d); err != nil {
			t.Fatalf("AddProcess(%s): %v", d.ID, err)
		}
	}
	return s
}

// runChecked steps to completion, verifying invariants after every tick.
func runChecked(t *testing.T, s *Scheduler, maxTicks int64) {
	t.Helper()
	for s.HasJobs() {
		if s.Clock() >= maxTicks {
			t.Fatalf("not finished after %d ticks", maxTicks)
		}
		s.Step()
		if err := s.CheckInvariants(); err != nil {
			t.Fatalf("tick %d: %v", s.Clock()-1, err)
		}
	}
}

func statsByID(s *Scheduler) map[string]ProcessStats {
	out := make(map[string]ProcessStats)
	for _, st := range s.Finished() {
		out[st.ID] = st
	}
	return out
}

func policyCfg(name string, quantum int) SchedulerConfig {
	cfg := NewSchedulerConfig()
	cfg.NumIODevices = 0
	cfg.Policy = PolicyConfig{Name: name, Quantum: quantum}
	return cfg
}

// goldenDescriptors converts golden processes to descriptors.
func goldenDescriptors(procs []testutil.GoldenProcess) []ProcessDescriptor {
	descs := make([]ProcessDescriptor, len(procs))
	for i, gp := range procs {
		bursts := make([]Burst, len(gp.Bursts))
		for j, gb := range gp.Bursts {
			if gb.Kind == string(BurstCPU) {
				bursts[j] = CPUBurst(gb.Duration)
			} else {
				bursts[j] = IOBurst(gb.Device, gb.Duration)
			}
		}
		descs[i] = ProcessDescriptor{ID: gp.PID, Priority: gp.Priority, ArrivalTime: gp.Arrival, Bursts: bursts}
	}
	return descs
}
