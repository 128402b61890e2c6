// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/procsim/sim/trace"
)

// Snapshot is a read-only view of the Scheduler between ticks.
// CPUs and IOs hold one entry per slot: the occupant ID, or "" when idle.
type Snapshot struct {
	Clock    int64    `json:"clock"`
	Ready    []string `json:"ready"`
	Waiting  []string `json:"waiting"`
	CPUs     []string `json:"cpus"`
	IOs      []string `json:"ios"`
	Finished []string `json:"finished"`
}

// Scheduler is the core object that holds simulation time, the process
// collections, the resource slots and the active DispatchPolicy.
// It is not safe for concurrent use: one driver calls Step until HasJobs is false.
type Scheduler struct {
	clock  int64
	policy DispatchPolicy
	queues QueueSet
	cpus   []*Slot
	ios    []*Slot

	// finished processes, in completion order
	finished []*Process
	// every process ever added, in AddProcess order
	all     []*Process
	ids     map[string]bool
	started bool

	// Trace is non-nil only when the config asked for event tracing.
	Trace *trace.SimulationTrace
}

// NewScheduler validates cfg and builds an idle Scheduler at clock 0.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := NewDispatchPolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		policy: policy,
		cpus:   make([]*Slot, cfg.NumCPUs),
		ios:    make([]*Slot, cfg.NumIODevices),
		ids:    make(map[string]bool),
	}
	for i := range s.cpus {
		s.cpus[i] = &Slot{Kind: SlotCPU, Index: i}
	}
	for i := range s.ios {
		s.ios[i] = &Slot{Kind: SlotIO, Index: i}
	}
	if cfg.TraceLevel == trace.TraceLevelEvents {
		s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: cfg.TraceLevel})
	}
	return s, nil
}

// AddProcess validates desc and takes ownership of a new Process built from it.
// Once stepping has begun, only processes arriving at or after the current
// clock are accepted.
func (s *Scheduler) AddProcess(desc ProcessDescriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}
	if s.ids[desc.ID] {
		return fmt.Errorf("process %s: %w", desc.ID, ErrDuplicateID)
	}
	if len(s.ios) == 0 && TotalDuration(desc.Bursts, BurstIO) > 0 {
		return fmt.Errorf("process %s: %w", desc.ID, ErrNoIODevice)
	}
	if s.started && desc.ArrivalTime < s.clock {
		return fmt.Errorf("process %s arriving at %d, clock is %d: %w", desc.ID, desc.ArrivalTime, s.clock, ErrAlreadyStarted)
	}
	p := NewProcess(desc)
	p.seq = len(s.all)
	s.all = append(s.all, p)
	s.ids[p.ID] = true
	s.queues.NotArrived.InsertByArrival(p)
	return nil
}

// Step executes one tick: admission, aging, resource advance, preemption,
// dispatch, then clock += 1.
func (s *Scheduler) Step() {
	s.started = true
	s.admit()
	s.age()
	s.advanceResources()
	s.preempt()
	s.dispatch()
	s.clock++
}

// HasJobs reports whether any added process has not yet finished.
func (s *Scheduler) HasJobs() bool {
	return len(s.finished) < len(s.all)
}

// Run steps until every process finishes. A positive maxTicks caps the clock;
// reaching the cap with unfinished work returns ErrTickLimit.
// Returns the clock at which stepping stopped.
func (s *Scheduler) Run(maxTicks int64) (int64, error) {
	for s.HasJobs() {
		if maxTicks > 0 && s.clock >= maxTicks {
			logrus.Warnf("[tick %07d] Tick limit reached with %d of %d processes finished", s.clock, len(s.finished), len(s.all))
			return s.clock, fmt.Errorf("%w: %d of %d finished at tick %d", ErrTickLimit, len(s.finished), len(s.all), s.clock)
		}
		s.Step()
	}
	logrus.Infof("[tick %07d] Simulation ended: %d processes finished under %s", s.clock, len(s.finished), s.policy.Name())
	return s.clock, nil
}

// Clock returns the tick the next Step will execute.
func (s *Scheduler) Clock() int64 { return s.clock }

// Policy returns the active dispatch policy.
func (s *Scheduler) Policy() DispatchPolicy { return s.policy }

// NumCPUs returns the number of CPU slots.
func (s *Scheduler) NumCPUs() int { return len(s.cpus) }

// NumIODevices returns the number of I/O slots.
func (s *Scheduler) NumIODevices() int { return len(s.ios) }

// CPUBusyTicks returns the total ticks CPU slots spent advancing occupants.
func (s *Scheduler) CPUBusyTicks() int64 {
	var total int64
	for _, c := range s.cpus {
		total += c.BusyTicks
	}
	return total
}

// Snapshot returns the current queue and slot contents. It has no side effects.
func (s *Scheduler) Snapshot() Snapshot {
	snap := Snapshot{
		Clock:    s.clock,
		Ready:    s.queues.Ready.IDs(),
		Waiting:  s.queues.Waiting.IDs(),
		CPUs:     make([]string, len(s.cpus)),
		IOs:      make([]string, len(s.ios)),
		Finished: make([]string, len(s.finished)),
	}
	for i, c := range s.cpus {
		snap.CPUs[i] = c.OccupantID()
	}
	for i, d := range s.ios {
		snap.IOs[i] = d.OccupantID()
	}
	for i, p := range s.finished {
		snap.Finished[i] = p.ID
	}
	return snap
}

// Finished returns statistics for every finished process, in completion order.
func (s *Scheduler) Finished() []ProcessStats {
	out := make([]ProcessStats, len(s.finished))
	for i, p := range s.finished {
		out[i] = NewProcessStats(p)
	}
	return out
}

// admit moves every due process from NotArrived to the Ready tail.
func (s *Scheduler) admit() {
	for {
		p := s.queues.NotArrived.Peek()
		if p == nil || p.ArrivalTime > s.clock {
			return
		}
		s.queues.NotArrived.Dequeue()
		p.transition(StateReady)
		p.StartTime = s.clock
		p.readySince = s.clock
		s.queues.Ready.Enqueue(p)
		logrus.Debugf("[tick %07d] %s arrived", s.clock, p.ID)
		s.record(trace.EventArrive, p, "", "")
	}
}

// age charges the interval ending at this tick. Processes admitted on this
// tick have not waited yet.
func (s *Scheduler) age() {
	for _, p := range s.queues.Ready.Items() {
		if p.readySince < s.clock {
			p.WaitTime++
		}
	}
	for _, p := range s.queues.Waiting.Items() {
		p.IOTime++
		p.IOQueueTime++
	}
	if obs, ok := s.policy.(LoadObserver); ok {
		obs.ObserveLoad(s.queues.Ready.Len())
	}
}

func (s *Scheduler) advanceResources() {
	for _, c := range s.cpus {
		p := c.Occupant
		if p == nil {
			continue
		}
		c.BusyTicks++
		if c.QuantumLeft > 0 {
			c.QuantumLeft--
		}
		if p.advance() {
			c.Release()
			s.route(p, c)
		}
	}
	for _, d := range s.ios {
		p := d.Occupant
		if p == nil {
			continue
		}
		d.BusyTicks++
		if p.advance() {
			d.Release()
			s.route(p, d)
		}
	}
}

// route sends a process whose burst just completed to its next collection.
func (s *Scheduler) route(p *Process, from *Slot) {
	next := p.CurrentBurst()
	switch {
	case next == nil:
		p.transition(StateFinished)
		p.EndTime = s.clock
		p.TurnaroundTime = p.EndTime - p.ArrivalTime
		s.finished = append(s.finished, p)
		logrus.Debugf("[tick %07d] %s finished on %s (turnaround=%d)", s.clock, p.ID, from.Name(), p.TurnaroundTime)
		s.record(trace.EventFinish, p, from.Name(), "")
	case next.Kind == BurstIO:
		// io -> io stays in Waiting and requeues at the tail
		if p.State == StateRunning {
			p.transition(StateWaiting)
		}
		s.queues.Waiting.Enqueue(p)
		logrus.Debugf("[tick %07d] %s waiting for %s io", s.clock, p.ID, next.DeviceClass)
		kind := trace.EventCPUToIO
		if from.Kind == SlotIO {
			kind = trace.EventIOToIO
		}
		s.record(kind, p, from.Name(), string(from.Kind)+"_to_io")
	default:
		p.transition(StateReady)
		p.readySince = s.clock
		s.queues.Ready.Enqueue(p)
		logrus.Debugf("[tick %07d] %s ready for next cpu burst", s.clock, p.ID)
		s.record(trace.EventToReady, p, from.Name(), string(from.Kind)+"_to_cpu")
	}
}

// preempt applies quantum expiry, then readiness preemption. Readiness
// preemption pairs the best ready processes that will not get a free CPU
// against the worst running ones, stopping at the first pair the policy keeps.
func (s *Scheduler) preempt() {
	for _, c := range s.cpus {
		if c.QuantumExpired() {
			s.preemptSlot(c, "quantum")
		}
	}
	if s.queues.Ready.Len() == 0 {
		return
	}

	s.orderReady()
	free := 0
	var victims []*Process
	for _, c := range s.cpus {
		if c.Busy() {
			victims = append(victims, c.Occupant)
		} else {
			free++
		}
	}
	ready := s.queues.Ready.Items()
	if free >= len(ready) || len(victims) == 0 {
		return
	}
	candidates := append([]*Process(nil), ready[free:]...)
	s.policy.OrderQueue(victims, s.clock)

	for i, cand := range candidates {
		if i >= len(victims) {
			break
		}
		victim := victims[len(victims)-1-i]
		if !s.policy.ShouldPreempt(victim, cand) {
			break
		}
		s.preemptSlot(s.slotOf(victim), "displaced by "+cand.ID)
	}
}

func (s *Scheduler) preemptSlot(c *Slot, reason string) {
	p := c.Release()
	p.transition(StateReady)
	p.Preemptions++
	p.readySince = s.clock
	s.queues.Ready.Enqueue(p)
	logrus.Debugf("[tick %07d] %s preempted on %s: %s (remaining=%d)", s.clock, p.ID, c.Name(), reason, p.RemainingInBurst())
	s.record(trace.EventPreempt, p, c.Name(), reason)
}

func (s *Scheduler) slotOf(p *Process) *Slot {
	for _, c := range s.cpus {
		if c.Occupant == p {
			return c
		}
	}
	panic(fmt.Sprintf("slotOf: process %s is not on a cpu", p.ID))
}

func (s *Scheduler) orderReady() {
	s.queues.Ready.Reorder(func(procs []*Process) {
		s.policy.OrderQueue(procs, s.clock)
	})
}

// dispatch fills free CPUs from the ordered Ready queue and free I/O devices
// from Waiting in FIFO order.
func (s *Scheduler) dispatch() {
	s.orderReady()
	for _, c := range s.cpus {
		if c.Busy() {
			continue
		}
		p := s.queues.Ready.Dequeue()
		if p == nil {
			break
		}
		p.transition(StateRunning)
		slice := s.policy.TimeSlice(p)
		c.Assign(p, slice)
		p.Quantum = slice
		p.Dispatches++
		if p.FirstDispatchTime == nil {
			t := s.clock
			p.FirstDispatchTime = &t
		}
		logrus.Debugf("[tick %07d] %s dispatched on %s (slice=%d)", s.clock, p.ID, c.Name(), slice)
		s.record(trace.EventDispatch, p, c.Name(), "")
	}
	for _, d := range s.ios {
		if d.Busy() {
			continue
		}
		p := s.queues.Waiting.Dequeue()
		if p == nil {
			break
		}
		d.Assign(p, 0)
		logrus.Debugf("[tick %07d] %s started io on %s", s.clock, p.ID, d.Name())
		s.record(trace.EventDispatch, p, d.Name(), "")
	}
}

func (s *Scheduler) record(kind trace.EventKind, p *Process, device, reason string) {
	if !s.Trace.Enabled() {
		return
	}
	s.Trace.Record(trace.EventRecord{
		Clock:     s.clock,
		Kind:      kind,
		ProcessID: p.ID,
		Device:    device,
		Reason:    reason,
		Ready:     s.queues.Ready.IDs(),
		Waiting:   s.queues.Waiting.IDs(),
	})
}

// CheckInvariants verifies that every process sits in exactly one collection
// that agrees with its state, that slot occupants match the slot kind, and
// that burst cursors are in range.
func (s *Scheduler) CheckInvariants() error {
	seen := make(map[*Process]string, len(s.all))
	place := func(p *Process, where string, want ProcessState) error {
		if prev, dup := seen[p]; dup {
			return fmt.Errorf("%w: process %s in both %s and %s", ErrInvariantViolation, p.ID, prev, where)
		}
		seen[p] = where
		if p.State != want {
			return fmt.Errorf("%w: process %s in %s has state %s", ErrInvariantViolation, p.ID, where, p.State)
		}
		if p.Cursor > len(p.Bursts) {
			return fmt.Errorf("%w: process %s cursor %d exceeds %d bursts", ErrInvariantViolation, p.ID, p.Cursor, len(p.Bursts))
		}
		if b := p.CurrentBurst(); b != nil && (p.ElapsedInBurst < 0 || p.ElapsedInBurst >= b.Duration) {
			return fmt.Errorf("%w: process %s elapsed %d outside burst of %d", ErrInvariantViolation, p.ID, p.ElapsedInBurst, b.Duration)
		}
		return nil
	}
	checkQueue := func(q *ProcessQueue, where string, want ProcessState) error {
		for _, p := range q.Items() {
			if err := place(p, where, want); err != nil {
				return err
			}
		}
		return nil
	}
	if err := checkQueue(&s.queues.NotArrived, "not-arrived", StateNotArrived); err != nil {
		return err
	}
	if err := checkQueue(&s.queues.Ready, "ready", StateReady); err != nil {
		return err
	}
	if err := checkQueue(&s.queues.Waiting, "waiting", StateWaiting); err != nil {
		return err
	}
	for _, slots := range [][]*Slot{s.cpus, s.ios} {
		for _, c := range slots {
			p := c.Occupant
			if p == nil {
				continue
			}
			want, kind := StateRunning, BurstCPU
			if c.Kind == SlotIO {
				want, kind = StateWaiting, BurstIO
			}
			if err := place(p, c.Name(), want); err != nil {
				return err
			}
			if b := p.CurrentBurst(); b == nil || b.Kind != kind {
				return fmt.Errorf("%w: %s holds process %s whose current burst is not %s", ErrInvariantViolation, c.Name(), p.ID, kind)
			}
		}
	}
	for _, p := range s.finished {
		if err := place(p, "finished", StateFinished); err != nil {
			return err
		}
		if !p.IsComplete() {
			return fmt.Errorf("%w: finished process %s has cursor %d of %d", ErrInvariantViolation, p.ID, p.Cursor, len(p.Bursts))
		}
	}
	if len(seen) != len(s.all) {
		return fmt.Errorf("%w: tracking %d of %d processes", ErrInvariantViolation, len(seen), len(s.all))
	}
	return nil
}
