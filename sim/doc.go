// Package sim provides the tick-driven CPU/I-O scheduling engine for procsim.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - process.go: Process lifecycle (not-arrived → ready → running ⇄ waiting → finished) and state machine
//   - policy.go: DispatchPolicy and the ready-queue orderings of the six policies
//   - simulator.go: The Scheduler and its five-phase Step
//
// # Tick
//
// Each Step runs admission, aging, resource advance, preemption and dispatch,
// then advances the clock. A burst of d ticks dispatched at tick T completes
// during the Step at tick T+d, which is the process's end time if it was the
// last burst.
//
// # Architecture
//
// The sim package owns the engine; adjacent concerns live in sub-packages:
//   - sim/workload/: Workload files, URL fetching, arrival strategies, synthetic generation
//   - sim/trace/: Transition trace recording
//   - sim/report/: Table, JSON and CSV rendering of results
//
// # Key Interfaces
//
//   - DispatchPolicy: order the ready queue, decide readiness preemption, grant time slices
//   - LoadObserver: optional per-tick ready-queue length feed (used by AdaptivePolicy)
package sim
