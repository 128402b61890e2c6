package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inference-sim/procsim/sim/trace"
)

var timelineHeader = []string{"time", "event_type", "process", "device", "reason", "ready_queue", "wait_queue"}

// WriteTimelineCSV writes one row per trace event. Queue columns hold
// space-separated process IDs, head first.
func WriteTimelineCSV(w io.Writer, st *trace.SimulationTrace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(timelineHeader); err != nil {
		return err
	}
	if st != nil {
		for _, e := range st.Events {
			row := []string{
				strconv.FormatInt(e.Clock, 10),
				string(e.Kind),
				e.ProcessID,
				e.Device,
				e.Reason,
				strings.Join(e.Ready, " "),
				strings.Join(e.Waiting, " "),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTimelineJSON writes the trace events as a JSON array.
func WriteTimelineJSON(w io.Writer, st *trace.SimulationTrace) error {
	events := []trace.EventRecord{}
	if st != nil {
		events = st.Events
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		return fmt.Errorf("encoding timeline: %w", err)
	}
	return nil
}
