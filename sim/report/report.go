// Package report renders finished scheduler runs as text tables, JSON and CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/inference-sim/procsim/sim"
	"github.com/inference-sim/procsim/sim/trace"
)

// Report is the JSON document emitted by `procsim run --format json`.
type Report struct {
	Metrics   sim.Metrics         `json:"metrics"`
	Processes []sim.ProcessStats  `json:"processes"`
	Trace     *trace.TraceSummary `json:"trace,omitempty"`
}

// New builds a Report from a finished scheduler.
func New(s *sim.Scheduler) Report {
	r := Report{
		Metrics:   sim.CollectMetrics(s),
		Processes: s.Finished(),
	}
	if s.Trace.Enabled() {
		r.Trace = trace.Summarize(s.Trace)
	}
	return r
}

var processHeader = []string{
	"PID", "Priority", "Arrival", "Start", "First CPU", "End",
	"Turnaround", "Wait", "Response", "Runtime", "IO", "Preempts",
}

func processRow(ps sim.ProcessStats) []string {
	return []string{
		ps.ID,
		strconv.Itoa(ps.Priority),
		strconv.FormatInt(ps.ArrivalTime, 10),
		strconv.FormatInt(ps.StartTime, 10),
		strconv.FormatInt(ps.FirstDispatch, 10),
		strconv.FormatInt(ps.EndTime, 10),
		strconv.FormatInt(ps.TurnaroundTime, 10),
		strconv.FormatInt(ps.WaitTime, 10),
		strconv.FormatInt(ps.ResponseTime, 10),
		strconv.FormatInt(ps.Runtime, 10),
		strconv.FormatInt(ps.IOTime, 10),
		strconv.Itoa(ps.Preemptions),
	}
}

func outputTitle(w io.Writer, title string) {
	if title == "" {
		return
	}
	_, _ = fmt.Fprintln(w, strings.Repeat("-", len(title)*2))
	_, _ = fmt.Fprintln(w, strings.Repeat(" ", len(title)/2), title)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", len(title)*2))
}

// WriteTable prints one row per finished process plus an averages footer,
// followed by a one-line run summary.
func WriteTable(w io.Writer, title string, stats []sim.ProcessStats, m sim.Metrics) {
	outputTitle(w, title)

	rows := make([][]string, 0, len(stats))
	for _, ps := range stats {
		rows = append(rows, processRow(ps))
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(processHeader)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(rows)
	table.SetFooter([]string{"", "", "", "", "", "",
		fmt.Sprintf("Average\n%.2f", m.AvgTurnaround),
		fmt.Sprintf("Average\n%.2f", m.AvgWait),
		fmt.Sprintf("Average\n%.2f", m.AvgResponse),
		"",
		fmt.Sprintf("Average\n%.2f", m.AvgIOTime),
		strconv.Itoa(m.Preemptions)})
	table.Render()

	_, _ = fmt.Fprintf(w, "policy=%s cpus=%d io=%d makespan=%d throughput=%.4f/t cpu_util=%.2f%% context_switches=%d\n",
		m.Policy, m.NumCPUs, m.NumIODevices, m.Makespan, m.Throughput, m.CPUUtilization*100, m.ContextSwitches)
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteCSV writes one header row and one row per process.
func WriteCSV(w io.Writer, stats []sim.ProcessStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(processHeader); err != nil {
		return err
	}
	for _, ps := range stats {
		if err := cw.Write(processRow(ps)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteComparison prints one row per policy run over the same workload.
func WriteComparison(w io.Writer, rows []sim.Metrics) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Policy", "Makespan", "Avg Wait", "Avg Turnaround", "Avg Response", "P90 Turnaround", "CPU Util", "Preempts", "Ctx Switches"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, m := range rows {
		table.Append([]string{
			m.Policy,
			strconv.FormatInt(m.Makespan, 10),
			fmt.Sprintf("%.2f", m.AvgWait),
			fmt.Sprintf("%.2f", m.AvgTurnaround),
			fmt.Sprintf("%.2f", m.AvgResponse),
			fmt.Sprintf("%.2f", m.P90Turnaround),
			fmt.Sprintf("%.2f%%", m.CPUUtilization*100),
			strconv.Itoa(m.Preemptions),
			strconv.Itoa(m.ContextSwitches),
		})
	}
	table.Render()
}
