// Package trace provides event-trace recording for scheduler timeline analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// EventKind names a scheduler transition captured in the trace.
type EventKind string

const (
	EventArrive   EventKind = "arrive"    // not-arrived -> ready
	EventDispatch EventKind = "dispatch"  // ready -> running, or waiting queue -> io device
	EventPreempt  EventKind = "preempt"   // running -> ready before burst completion
	EventCPUToIO  EventKind = "cpu_to_io" // cpu burst done, next burst is io
	EventIOToIO   EventKind = "io_to_io"  // io burst done, next burst is io
	EventToReady  EventKind = "to_ready"  // burst done, next burst is cpu
	EventFinish   EventKind = "finish"    // last burst done
)

// EventRecord captures a single transition together with the queue contents
// at the moment it was recorded.
type EventRecord struct {
	Clock     int64     `json:"time"`
	Kind      EventKind `json:"event_type"`
	ProcessID string    `json:"process"`
	Device    string    `json:"device,omitempty"` // slot name, e.g. "CPU0" or "IO1"
	Reason    string    `json:"reason,omitempty"`
	Ready     []string  `json:"ready_queue"`
	Waiting   []string  `json:"wait_queue"`
}
