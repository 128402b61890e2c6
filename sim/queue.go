// Implements the ProcessQueue used for the not-arrived, ready and waiting collections.

package sim

import (
	"fmt"
	"sort"
	"strings"
)

// ProcessQueue is a slice-backed FIFO of processes.
// The ready queue is reordered in place by the active DispatchPolicy; the
// waiting queue is never reordered.
type ProcessQueue struct {
	queue []*Process
}

// Enqueue adds a process to the back of the queue.
func (q *ProcessQueue) Enqueue(p *Process) {
	if p == nil {
		panic("Enqueue: process must not be nil")
	}
	q.queue = append(q.queue, p)
}

func (q *ProcessQueue) String() string {
	return "[" + strings.Join(q.IDs(), " ") + "]"
}

// Len returns the number of processes in the queue.
func (q *ProcessQueue) Len() int {
	return len(q.queue)
}

// Peek returns the process at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (q *ProcessQueue) Peek() *Process {
	if len(q.queue) == 0 {
		return nil
	}
	return q.queue[0]
}

// Dequeue removes and returns the process at the front, or nil if empty.
func (q *ProcessQueue) Dequeue() *Process {
	if len(q.queue) == 0 {
		return nil
	}
	p := q.queue[0]
	q.queue[0] = nil
	q.queue = q.queue[1:]
	return p
}

// Items returns the queue contents for iteration.
// The returned slice is the queue's internal storage: callers may iterate
// over it but MUST NOT append to or reslice it. Use Reorder to sort.
func (q *ProcessQueue) Items() []*Process {
	return q.queue
}

// IDs returns the process IDs in queue order.
func (q *ProcessQueue) IDs() []string {
	ids := make([]string, len(q.queue))
	for i, p := range q.queue {
		ids[i] = p.ID
	}
	return ids
}

// Reorder applies fn to the queue contents, allowing in-place reordering.
// DispatchPolicy.OrderQueue is the primary consumer:
//
//	q.Reorder(func(procs []*Process) {
//	    policy.OrderQueue(procs, clock)
//	})
//
// fn MUST NOT change the slice length (no append/delete).
func (q *ProcessQueue) Reorder(fn func([]*Process)) {
	if fn == nil {
		panic("Reorder: fn must not be nil")
	}
	n := len(q.queue)
	fn(q.queue)
	if len(q.queue) != n {
		panic(fmt.Sprintf("Reorder: fn changed queue length from %d to %d", n, len(q.queue)))
	}
}

// InsertByArrival inserts p keeping the queue sorted by arrival time, with
// equal arrival times kept in insertion order.
func (q *ProcessQueue) InsertByArrival(p *Process) {
	i := sort.Search(len(q.queue), func(i int) bool {
		return q.queue[i].ArrivalTime > p.ArrivalTime
	})
	q.queue = append(q.queue, nil)
	copy(q.queue[i+1:], q.queue[i:])
	q.queue[i] = p
}

// QueueSet groups the three process collections owned by the Scheduler.
type QueueSet struct {
	NotArrived ProcessQueue // sorted by arrival time
	Ready      ProcessQueue // ordered by the active DispatchPolicy
	Waiting    ProcessQueue // strict FIFO for I/O devices
}
