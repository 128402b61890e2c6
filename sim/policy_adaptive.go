package sim

import "sort"

// ProcessClass is the adaptive policy's view of a process's workload mix.
type ProcessClass string

const (
	ClassIOBound  ProcessClass = "io-bound"
	ClassBalanced ProcessClass = "balanced"
	ClassCPUBound ProcessClass = "cpu-bound"
)

const (
	// DefaultAdaptiveWindow is the number of ticks of ready-queue history
	// averaged when recomputing the adaptive quantum.
	DefaultAdaptiveWindow = 10

	adaptiveHighLoad   = 5.0 // average ready length above which the slice shrinks
	adaptiveLowLoad    = 2.0 // average ready length below which the slice grows
	adaptiveMinQuantum = 2
	adaptiveStep       = 2
)

// Classify buckets a process by the CPU and I/O service it has received so far.
// cpu > 2*io is CPU-bound, io > 2*cpu is I/O-bound, anything else (including a
// process with no history yet) is balanced.
func Classify(p *Process) ProcessClass {
	cpu, io := p.Runtime, p.IOServiceTime
	switch {
	case cpu > 2*io:
		return ClassCPUBound
	case io > 2*cpu:
		return ClassIOBound
	default:
		return ClassBalanced
	}
}

func classRank(c ProcessClass) int {
	switch c {
	case ClassIOBound:
		return 0
	case ClassBalanced:
		return 1
	default:
		return 2
	}
}

// AdaptivePolicy orders the ready queue in three tiers (I/O-bound, balanced,
// CPU-bound), each by next CPU burst duration like SJF, and time-slices like
// round robin.
//
// The slice length follows load: every tick the Scheduler reports the ready
// queue length, and over the trailing window
//
//	average > 5  => max(2, base-2)
//	average < 2  => base+2
//	otherwise    => base
//
// A new slice only affects dispatches made after the recomputation; a process
// already on a CPU keeps the counter it was granted.
type AdaptivePolicy struct {
	BaseQuantum int
	Window      int

	current int
	history []int
}

// NewAdaptivePolicy creates an AdaptivePolicy. Non-positive arguments select
// DefaultQuantum and DefaultAdaptiveWindow.
func NewAdaptivePolicy(baseQuantum, window int) *AdaptivePolicy {
	if baseQuantum <= 0 {
		baseQuantum = DefaultQuantum
	}
	if window <= 0 {
		window = DefaultAdaptiveWindow
	}
	return &AdaptivePolicy{
		BaseQuantum: baseQuantum,
		Window:      window,
		current:     baseQuantum,
		history:     make([]int, 0, window),
	}
}

func (a *AdaptivePolicy) Name() string { return "adaptive" }

func (a *AdaptivePolicy) OrderQueue(procs []*Process, _ int64) {
	sort.SliceStable(procs, func(i, j int) bool {
		ci, cj := classRank(Classify(procs[i])), classRank(Classify(procs[j]))
		if ci != cj {
			return ci < cj
		}
		bi, bj := procs[i].NextCPUBurst(), procs[j].NextCPUBurst()
		if bi != bj {
			return bi < bj
		}
		return arrivalLess(procs[i], procs[j])
	})
}

func (a *AdaptivePolicy) ShouldPreempt(_, _ *Process) bool { return false }

func (a *AdaptivePolicy) TimeSlice(_ *Process) int { return a.current }

// CurrentQuantum returns the slice that the next dispatch will receive.
func (a *AdaptivePolicy) CurrentQuantum() int { return a.current }

// AverageLoad returns the mean ready-queue length over the recorded window.
func (a *AdaptivePolicy) AverageLoad() float64 {
	if len(a.history) == 0 {
		return 0
	}
	sum := 0
	for _, v := range a.history {
		sum += v
	}
	return float64(sum) / float64(len(a.history))
}

// ObserveLoad records the ready-queue length and recomputes the slice.
func (a *AdaptivePolicy) ObserveLoad(readyLen int) {
	if len(a.history) == a.Window {
		copy(a.history, a.history[1:])
		a.history = a.history[:a.Window-1]
	}
	a.history = append(a.history, readyLen)

	avg := a.AverageLoad()
	switch {
	case avg > adaptiveHighLoad:
		a.current = max(adaptiveMinQuantum, a.BaseQuantum-adaptiveStep)
	case avg < adaptiveLowLoad:
		a.current = a.BaseQuantum + adaptiveStep
	default:
		a.current = a.BaseQuantum
	}
}
