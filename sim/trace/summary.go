package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents        int
	KindCounts         map[EventKind]int
	DeviceDispatches   map[string]int // slot name → number of dispatches onto it
	PreemptedProcesses int            // distinct processes preempted at least once
	LastClock          int64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		KindCounts:       make(map[EventKind]int),
		DeviceDispatches: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	preempted := make(map[string]bool)
	summary.TotalEvents = len(st.Events)
	for _, e := range st.Events {
		summary.KindCounts[e.Kind]++
		if e.Kind == EventDispatch && e.Device != "" {
			summary.DeviceDispatches[e.Device]++
		}
		if e.Kind == EventPreempt {
			preempted[e.ProcessID] = true
		}
		if e.Clock > summary.LastClock {
			summary.LastClock = e.Clock
		}
	}
	summary.PreemptedProcesses = len(preempted)

	return summary
}
