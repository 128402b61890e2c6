// Defines the Process struct that models a simulated job with its burst sequence.
// Tracks arrival, burst progress, and the timing accumulators used for statistics.

package sim

import (
	"fmt"
	"strings"
)

// ProcessState represents the lifecycle state of a process.
type ProcessState string

const (
	StateNotArrived ProcessState = "not-arrived"
	StateReady      ProcessState = "ready"
	StateRunning    ProcessState = "running"
	StateWaiting    ProcessState = "waiting"
	StateFinished   ProcessState = "finished"
)

// legalTransitions lists every state change the scheduler may perform.
// Waiting covers both the waiting queue and an I/O slot.
var legalTransitions = map[ProcessState]map[ProcessState]bool{
	StateNotArrived: {StateReady: true},
	StateReady:      {StateRunning: true},
	StateRunning:    {StateWaiting: true, StateFinished: true, StateReady: true},
	StateWaiting:    {StateReady: true, StateFinished: true},
}

// DefaultQuantum is the time slice used when neither the policy nor the
// process descriptor provides one.
const DefaultQuantum = 4

// ProcessDescriptor is the input record for one process, produced by workload
// loaders and handed to Scheduler.AddProcess.
type ProcessDescriptor struct {
	ID          string  `json:"pid" yaml:"pid"`
	Bursts      []Burst `json:"bursts" yaml:"bursts"`
	Priority    int     `json:"priority" yaml:"priority"`
	ArrivalTime int64   `json:"arrival_time" yaml:"arrival_time"`
	Quantum     int     `json:"quantum,omitempty" yaml:"quantum,omitempty"`
}

// Validate checks the descriptor for input errors (empty or malformed bursts).
func (d ProcessDescriptor) Validate() error {
	if d.ID == "" {
		return ErrMissingID
	}
	if len(d.Bursts) == 0 {
		return fmt.Errorf("process %s: %w", d.ID, ErrEmptyBursts)
	}
	for i, b := range d.Bursts {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("process %s burst[%d]: %w", d.ID, i, err)
		}
	}
	if d.Bursts[0].Kind != BurstCPU {
		return fmt.Errorf("process %s: %w: first burst must be cpu, got %s", d.ID, ErrInvalidBurst, d.Bursts[0].Kind)
	}
	if d.ArrivalTime < 0 {
		return fmt.Errorf("process %s: %w: arrival_time must be non-negative, got %d", d.ID, ErrInvalidField, d.ArrivalTime)
	}
	if d.Quantum < 0 {
		return fmt.Errorf("process %s: %w: quantum must be non-negative, got %d", d.ID, ErrInvalidField, d.Quantum)
	}
	return nil
}

// Process models a single job's lifecycle in the simulation.
// All fields are present from construction; FirstDispatchTime stays nil until
// the process is first placed on a CPU.
type Process struct {
	ID     string
	Bursts []Burst // fixed at creation

	Cursor         int   // index of the current burst; len(Bursts) means complete
	ElapsedInBurst int64 // ticks spent in the current burst

	Priority    int   // lower value = higher priority
	ArrivalTime int64 // tick at which the process may enter Ready
	Quantum     int   // time slice granted at the most recent dispatch
	State       ProcessState

	WaitTime          int64  // ticks spent in Ready
	IOTime            int64  // ticks spent Waiting (queued for or on an I/O device)
	IOQueueTime       int64  // part of IOTime spent queued without a device
	IOServiceTime     int64  // part of IOTime spent on a device
	Runtime           int64  // ticks spent on a CPU
	FirstDispatchTime *int64 // set once, at first dispatch
	StartTime         int64  // tick of first entry into Ready
	EndTime           int64
	TurnaroundTime    int64 // EndTime - ArrivalTime, set on entering Finished

	Dispatches  int // number of times placed on a CPU
	Preemptions int // number of times returned to Ready before burst completion

	InitialCPU int64 // total CPU work in Bursts
	InitialIO  int64 // total I/O work in Bursts

	quantumHint int   // quantum from the descriptor (0 = none)
	seq         int   // order of AddProcess calls, final tie-break
	readySince  int64 // tick of the most recent entry into Ready
}

// NewProcess builds a Process in state NotArrived from a descriptor.
// The burst slice is copied so later changes to the descriptor are not observed.
func NewProcess(desc ProcessDescriptor) *Process {
	bursts := make([]Burst, len(desc.Bursts))
	copy(bursts, desc.Bursts)
	return &Process{
		ID:          desc.ID,
		Bursts:      bursts,
		Priority:    desc.Priority,
		ArrivalTime: desc.ArrivalTime,
		Quantum:     desc.Quantum,
		State:       StateNotArrived,
		InitialCPU:  TotalDuration(bursts, BurstCPU),
		InitialIO:   TotalDuration(bursts, BurstIO),
		quantumHint: desc.Quantum,
	}
}

// CurrentBurst returns the burst in progress, or nil once all bursts are done.
func (p *Process) CurrentBurst() *Burst {
	if p.Cursor >= len(p.Bursts) {
		return nil
	}
	return &p.Bursts[p.Cursor]
}

// IsComplete reports whether every burst has been retired.
func (p *Process) IsComplete() bool {
	return p.Cursor >= len(p.Bursts)
}

// RemainingInBurst returns the ticks left in the current burst (0 when complete).
func (p *Process) RemainingInBurst() int64 {
	b := p.CurrentBurst()
	if b == nil {
		return 0
	}
	return b.Duration - p.ElapsedInBurst
}

// NextCPUBurst returns the full duration of the current or next CPU burst,
// or 0 if no CPU work remains.
func (p *Process) NextCPUBurst() int64 {
	for i := p.Cursor; i < len(p.Bursts); i++ {
		if p.Bursts[i].Kind == BurstCPU {
			return p.Bursts[i].Duration
		}
	}
	return 0
}

// ResponseTime returns first dispatch minus arrival, or -1 if never dispatched.
func (p *Process) ResponseTime() int64 {
	if p.FirstDispatchTime == nil {
		return -1
	}
	return *p.FirstDispatchTime - p.ArrivalTime
}

// advance spends one tick on the current burst and retires it when done.
// Returns true when the burst completed on this tick.
func (p *Process) advance() bool {
	b := p.CurrentBurst()
	if b == nil {
		panic(fmt.Sprintf("advance: process %s has no current burst (cursor=%d, bursts=%d)", p.ID, p.Cursor, len(p.Bursts)))
	}
	p.ElapsedInBurst++
	if b.Kind == BurstCPU {
		p.Runtime++
	} else {
		p.IOServiceTime++
		p.IOTime++
	}
	if p.ElapsedInBurst < b.Duration {
		return false
	}
	p.Cursor++
	p.ElapsedInBurst = 0
	return true
}

// transition moves the process to a new state, panicking on an illegal change.
func (p *Process) transition(to ProcessState) {
	if !legalTransitions[p.State][to] {
		panic(fmt.Sprintf("illegal transition %s -> %s for process %s", p.State, to, p.ID))
	}
	p.State = to
}

// This method returns a human-readable string representation of a Process.
func (p *Process) String() string {
	parts := make([]string, len(p.Bursts))
	for i, b := range p.Bursts {
		parts[i] = b.String()
	}
	return fmt.Sprintf("Process: (ID: %s, State: %s, Cursor: %d/%d, Priority: %d, ArrivalTime: %d, Bursts: [%s])",
		p.ID, p.State, p.Cursor, len(p.Bursts), p.Priority, p.ArrivalTime, strings.Join(parts, " "))
}
