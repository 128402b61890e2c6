package sim

import (
	"fmt"
	"sort"
)

// DispatchPolicy decides the order of the ready queue and whether a running
// process yields its CPU. The Scheduler owns a single policy value and calls it
// from its tick phases; policies never mutate processes.
type DispatchPolicy interface {
	// Name returns the canonical policy name.
	Name() string
	// OrderQueue sorts the ready processes in place; the head is dispatched next.
	// Implementations use sort.SliceStable for determinism.
	OrderQueue(procs []*Process, clock int64)
	// ShouldPreempt reports whether candidate (the best ready process) should
	// displace running. Quantum expiry is handled by the Scheduler, not here.
	ShouldPreempt(running, candidate *Process) bool
	// TimeSlice returns the quantum granted to p on dispatch; 0 means the
	// process keeps the CPU until its burst completes or it is preempted.
	TimeSlice(p *Process) int
}

// LoadObserver is implemented by policies that adapt to ready-queue length.
// The Scheduler calls ObserveLoad once per tick, after admission.
type LoadObserver interface {
	ObserveLoad(readyLen int)
}

// validPolicies maps accepted policy names (including aliases) to canonical names.
var validPolicies = map[string]string{
	"":            "fcfs",
	"fcfs":        "fcfs",
	"rr":          "rr",
	"round-robin": "rr",
	"sjf":         "sjf",
	"srtf":        "srtf",
	"priority":    "priority",
	"adaptive":    "adaptive",
}

// PolicyNames lists the canonical policy names in presentation order.
var PolicyNames = []string{"fcfs", "rr", "sjf", "srtf", "priority", "adaptive"}

// IsValidPolicy returns true if name is a recognized policy name or alias.
func IsValidPolicy(name string) bool {
	_, ok := validPolicies[name]
	return ok
}

// NewDispatchPolicy creates a fresh DispatchPolicy from cfg.
// Empty name defaults to FCFS. Each call returns independent state.
func NewDispatchPolicy(cfg PolicyConfig) (DispatchPolicy, error) {
	name, ok := validPolicies[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, cfg.Name)
	}
	if cfg.Quantum < 0 {
		return nil, fmt.Errorf("%w: quantum must be non-negative, got %d", ErrInvalidConfig, cfg.Quantum)
	}
	if cfg.AdaptiveWindow < 0 {
		return nil, fmt.Errorf("%w: adaptive_window must be non-negative, got %d", ErrInvalidConfig, cfg.AdaptiveWindow)
	}
	switch name {
	case "fcfs":
		return &FCFSPolicy{}, nil
	case "rr":
		return &RoundRobinPolicy{Quantum: cfg.Quantum}, nil
	case "sjf":
		return &SJFPolicy{}, nil
	case "srtf":
		return &SRTFPolicy{}, nil
	case "priority":
		return &PriorityPolicy{Preemptive: cfg.Preemptive}, nil
	case "adaptive":
		return NewAdaptivePolicy(cfg.Quantum, cfg.AdaptiveWindow), nil
	default:
		panic(fmt.Sprintf("unhandled policy %q", name))
	}
}

// arrivalLess orders by arrival time, then by AddProcess order.
func arrivalLess(a, b *Process) bool {
	if a.ArrivalTime != b.ArrivalTime {
		return a.ArrivalTime < b.ArrivalTime
	}
	return a.seq < b.seq
}

// FCFSPolicy dispatches in ready-queue entry order and never preempts.
type FCFSPolicy struct{}

func (f *FCFSPolicy) Name() string { return "fcfs" }

func (f *FCFSPolicy) OrderQueue(_ []*Process, _ int64) {
	// No-op: FIFO order preserved from enqueue order
}

func (f *FCFSPolicy) ShouldPreempt(_, _ *Process) bool { return false }

func (f *FCFSPolicy) TimeSlice(_ *Process) int { return 0 }

// RoundRobinPolicy dispatches FIFO with a fixed quantum per dispatch.
// Quantum 0 falls back to the process's own quantum hint, then DefaultQuantum.
type RoundRobinPolicy struct {
	Quantum int
}

func (r *RoundRobinPolicy) Name() string { return "rr" }

func (r *RoundRobinPolicy) OrderQueue(_ []*Process, _ int64) {
	// No-op: preempted processes are requeued at the tail by the Scheduler
}

func (r *RoundRobinPolicy) ShouldPreempt(_, _ *Process) bool { return false }

func (r *RoundRobinPolicy) TimeSlice(p *Process) int {
	if r.Quantum > 0 {
		return r.Quantum
	}
	if p.quantumHint > 0 {
		return p.quantumHint
	}
	return DefaultQuantum
}

// SJFPolicy sorts by the duration of the next CPU burst (ascending),
// then by arrival. Non-preemptive.
// Warning: SJF can starve long processes under sustained load.
type SJFPolicy struct{}

func (s *SJFPolicy) Name() string { return "sjf" }

func (s *SJFPolicy) OrderQueue(procs []*Process, _ int64) {
	sort.SliceStable(procs, func(i, j int) bool {
		bi, bj := procs[i].NextCPUBurst(), procs[j].NextCPUBurst()
		if bi != bj {
			return bi < bj
		}
		return arrivalLess(procs[i], procs[j])
	})
}

func (s *SJFPolicy) ShouldPreempt(_, _ *Process) bool { return false }

func (s *SJFPolicy) TimeSlice(_ *Process) int { return 0 }

// SRTFPolicy sorts by remaining time in the current CPU burst and preempts a
// running process when a ready one has strictly less remaining time.
type SRTFPolicy struct{}

func (s *SRTFPolicy) Name() string { return "srtf" }

func (s *SRTFPolicy) OrderQueue(procs []*Process, _ int64) {
	sort.SliceStable(procs, func(i, j int) bool {
		ri, rj := procs[i].RemainingInBurst(), procs[j].RemainingInBurst()
		if ri != rj {
			return ri < rj
		}
		return arrivalLess(procs[i], procs[j])
	})
}

func (s *SRTFPolicy) ShouldPreempt(running, candidate *Process) bool {
	if running == nil || candidate == nil {
		return false
	}
	return candidate.RemainingInBurst() < running.RemainingInBurst()
}

func (s *SRTFPolicy) TimeSlice(_ *Process) int { return 0 }

// PriorityPolicy sorts by priority value ascending (lower is more urgent),
// then by arrival. With Preemptive set, a strictly more urgent ready process
// displaces the running one.
type PriorityPolicy struct {
	Preemptive bool
}

func (p *PriorityPolicy) Name() string { return "priority" }

func (p *PriorityPolicy) OrderQueue(procs []*Process, _ int64) {
	sort.SliceStable(procs, func(i, j int) bool {
		if procs[i].Priority != procs[j].Priority {
			return procs[i].Priority < procs[j].Priority
		}
		return arrivalLess(procs[i], procs[j])
	})
}

func (p *PriorityPolicy) ShouldPreempt(running, candidate *Process) bool {
	if !p.Preemptive || running == nil || candidate == nil {
		return false
	}
	return candidate.Priority < running.Priority
}

func (p *PriorityPolicy) TimeSlice(_ *Process) int { return 0 }
