package sim

import "fmt"

// SlotKind distinguishes CPU slots from I/O device slots.
type SlotKind string

const (
	SlotCPU SlotKind = "cpu"
	SlotIO  SlotKind = "io"
)

// Slot is a CPU or I/O device holding at most one process.
// Quantum and QuantumLeft belong to the current (slot, occupant) pair: they
// are set on Assign and discarded on Release. Quantum 0 means no time slice.
type Slot struct {
	Kind        SlotKind
	Index       int
	Occupant    *Process
	Quantum     int
	QuantumLeft int
	BusyTicks   int64 // ticks this slot spent advancing an occupant
}

// Name returns the display name of the slot, e.g. "CPU0" or "IO1".
func (s *Slot) Name() string {
	if s.Kind == SlotCPU {
		return fmt.Sprintf("CPU%d", s.Index)
	}
	return fmt.Sprintf("IO%d", s.Index)
}

// Busy reports whether the slot has an occupant.
func (s *Slot) Busy() bool {
	return s.Occupant != nil
}

// Assign places p on the slot with the given time slice.
// Panics if the slot is occupied or p's current burst does not match the slot kind.
func (s *Slot) Assign(p *Process, quantum int) {
	if p == nil {
		panic(fmt.Sprintf("Assign: nil process on %s", s.Name()))
	}
	if s.Occupant != nil {
		panic(fmt.Sprintf("Assign: %s already holds process %s", s.Name(), s.Occupant.ID))
	}
	b := p.CurrentBurst()
	if b == nil {
		panic(fmt.Sprintf("Assign: process %s has no remaining bursts", p.ID))
	}
	if (s.Kind == SlotCPU) != (b.Kind == BurstCPU) {
		panic(fmt.Sprintf("Assign: process %s current burst is %s, cannot run on %s", p.ID, b.Kind, s.Name()))
	}
	s.Occupant = p
	s.Quantum = quantum
	s.QuantumLeft = quantum
}

// QuantumExpired reports whether a time-sliced occupant has used its whole slice.
func (s *Slot) QuantumExpired() bool {
	return s.Occupant != nil && s.Quantum > 0 && s.QuantumLeft <= 0
}

// Release empties the slot and returns the former occupant.
func (s *Slot) Release() *Process {
	p := s.Occupant
	s.Occupant = nil
	s.Quantum = 0
	s.QuantumLeft = 0
	return p
}

// OccupantID returns the occupant's ID or "" when idle.
func (s *Slot) OccupantID() string {
	if s.Occupant == nil {
		return ""
	}
	return s.Occupant.ID
}
