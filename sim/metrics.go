// Tracks per-process timing statistics and the run-wide summary derived from them.

package sim

import "sort"

// ProcessStats is the lossless record of one finished process.
// FirstDispatch is -1 for a process that never reached a CPU, which cannot
// happen for a finished process but keeps the field total.
type ProcessStats struct {
	ID             string `json:"pid" yaml:"pid"`
	Priority       int    `json:"priority" yaml:"priority"`
	ArrivalTime    int64  `json:"arrival_time" yaml:"arrival_time"`
	StartTime      int64  `json:"start_time" yaml:"start_time"`
	FirstDispatch  int64  `json:"first_dispatch_time" yaml:"first_dispatch_time"`
	EndTime        int64  `json:"end_time" yaml:"end_time"`
	TurnaroundTime int64  `json:"turnaround_time" yaml:"turnaround_time"`
	WaitTime       int64  `json:"wait_time" yaml:"wait_time"`
	ResponseTime   int64  `json:"response_time" yaml:"response_time"`
	Runtime        int64  `json:"runtime" yaml:"runtime"`
	IOTime         int64  `json:"io_time" yaml:"io_time"`
	IOQueueTime    int64  `json:"io_queue_time" yaml:"io_queue_time"`
	InitialCPU     int64  `json:"init_cpu" yaml:"init_cpu"`
	InitialIO      int64  `json:"init_io" yaml:"init_io"`
	Dispatches     int    `json:"dispatches" yaml:"dispatches"`
	Preemptions    int    `json:"preemptions" yaml:"preemptions"`
}

// NewProcessStats copies the timing accumulators out of p.
func NewProcessStats(p *Process) ProcessStats {
	first := int64(-1)
	if p.FirstDispatchTime != nil {
		first = *p.FirstDispatchTime
	}
	return ProcessStats{
		ID:             p.ID,
		Priority:       p.Priority,
		ArrivalTime:    p.ArrivalTime,
		StartTime:      p.StartTime,
		FirstDispatch:  first,
		EndTime:        p.EndTime,
		TurnaroundTime: p.TurnaroundTime,
		WaitTime:       p.WaitTime,
		ResponseTime:   p.ResponseTime(),
		Runtime:        p.Runtime,
		IOTime:         p.IOTime,
		IOQueueTime:    p.IOQueueTime,
		InitialCPU:     p.InitialCPU,
		InitialIO:      p.InitialIO,
		Dispatches:     p.Dispatches,
		Preemptions:    p.Preemptions,
	}
}

// Metrics aggregates statistics about a finished run for final reporting.
type Metrics struct {
	Policy          string  `json:"policy" yaml:"policy"`
	NumCPUs         int     `json:"cpus" yaml:"cpus"`
	NumIODevices    int     `json:"io_devices" yaml:"io_devices"`
	Completed       int     `json:"completed" yaml:"completed"`
	Makespan        int64   `json:"makespan" yaml:"makespan"` // latest end time
	AvgWait         float64 `json:"avg_wait" yaml:"avg_wait"`
	AvgTurnaround   float64 `json:"avg_turnaround" yaml:"avg_turnaround"`
	AvgResponse     float64 `json:"avg_response" yaml:"avg_response"`
	AvgIOTime       float64 `json:"avg_io_time" yaml:"avg_io_time"`
	P50Turnaround   float64 `json:"p50_turnaround" yaml:"p50_turnaround"`
	P90Turnaround   float64 `json:"p90_turnaround" yaml:"p90_turnaround"`
	Throughput      float64 `json:"throughput" yaml:"throughput"`           // processes per tick
	CPUUtilization  float64 `json:"cpu_utilization" yaml:"cpu_utilization"` // busy cpu ticks / (cpus * makespan)
	Preemptions     int     `json:"preemptions" yaml:"preemptions"`
	ContextSwitches int     `json:"context_switches" yaml:"context_switches"` // cpu dispatches beyond the first per process
}

// CollectMetrics summarizes the finished processes of s.
// Safe to call mid-run; only finished processes contribute.
func CollectMetrics(s *Scheduler) Metrics {
	stats := s.Finished()
	m := Metrics{
		Policy:       s.Policy().Name(),
		NumCPUs:      s.NumCPUs(),
		NumIODevices: s.NumIODevices(),
		Completed:    len(stats),
	}
	if len(stats) == 0 {
		return m
	}

	waits := make([]int64, len(stats))
	turnarounds := make([]int64, len(stats))
	responses := make([]int64, len(stats))
	ios := make([]int64, len(stats))
	for i, st := range stats {
		waits[i] = st.WaitTime
		turnarounds[i] = st.TurnaroundTime
		responses[i] = st.ResponseTime
		ios[i] = st.IOTime
		m.Makespan = max(m.Makespan, st.EndTime)
		m.Preemptions += st.Preemptions
		if st.Dispatches > 1 {
			m.ContextSwitches += st.Dispatches - 1
		}
	}
	sort.Slice(turnarounds, func(i, j int) bool { return turnarounds[i] < turnarounds[j] })

	m.AvgWait = CalculateMean(waits)
	m.AvgTurnaround = CalculateMean(turnarounds)
	m.AvgResponse = CalculateMean(responses)
	m.AvgIOTime = CalculateMean(ios)
	m.P50Turnaround = CalculatePercentile(turnarounds, 50)
	m.P90Turnaround = CalculatePercentile(turnarounds, 90)
	if m.Makespan > 0 {
		m.Throughput = float64(m.Completed) / float64(m.Makespan)
		m.CPUUtilization = float64(s.CPUBusyTicks()) / (float64(m.NumCPUs) * float64(m.Makespan))
	}
	return m
}
