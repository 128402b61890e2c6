package sim

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessQueue_Peek_NonEmpty_ReturnsFront(t *testing.T) {
	// GIVEN a queue with processes [A, B]
	q := &ProcessQueue{}
	pA := &Process{ID: "A"}
	pB := &Process{ID: "B"}
	q.Enqueue(pA)
	q.Enqueue(pB)

	// WHEN Peek() is called
	got := q.Peek()

	// THEN it returns the front element without removing it
	if got != pA {
		t.Errorf("Peek: got process %v, want %v", got.ID, pA.ID)
	}
	if q.Len() != 2 {
		t.Errorf("Peek modified queue length: got %d, want 2", q.Len())
	}
}

func TestProcessQueue_Peek_Empty_ReturnsNil(t *testing.T) {
	q := &ProcessQueue{}
	if got := q.Peek(); got != nil {
		t.Errorf("Peek on empty queue: got %v, want nil", got)
	}
	if got := q.Dequeue(); got != nil {
		t.Errorf("Dequeue on empty queue: got %v, want nil", got)
	}
}

func TestProcessQueue_Reorder_AppliesFunction(t *testing.T) {
	// GIVEN a queue with processes [C, A, B] (enqueue order)
	q := &ProcessQueue{}
	q.Enqueue(&Process{ID: "C", ArrivalTime: 300})
	q.Enqueue(&Process{ID: "A", ArrivalTime: 100})
	q.Enqueue(&Process{ID: "B", ArrivalTime: 200})

	// WHEN Reorder is called with a function that sorts by arrival time
	q.Reorder(func(procs []*Process) {
		sort.SliceStable(procs, func(i, j int) bool {
			return procs[i].ArrivalTime < procs[j].ArrivalTime
		})
	})

	// THEN the queue order is [A, B, C] and length is preserved
	assert.Equal(t, []string{"A", "B", "C"}, q.IDs())
}

func TestProcessQueue_Reorder_EmptyQueue_NoOp(t *testing.T) {
	// GIVEN an empty queue
	q := &ProcessQueue{}
	called := false

	// WHEN Reorder is called
	q.Reorder(func(procs []*Process) {
		called = true
	})

	// THEN the function is still called (with empty slice) and queue remains empty
	if !called {
		t.Error("Reorder did not call the function on empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("Reorder on empty queue changed length: got %d, want 0", q.Len())
	}
}

func TestProcessQueue_Reorder_NilFunction_Panics(t *testing.T) {
	q := &ProcessQueue{}
	assert.Panics(t, func() { q.Reorder(nil) })
}

func TestProcessQueue_Enqueue_Nil_Panics(t *testing.T) {
	q := &ProcessQueue{}
	assert.Panics(t, func() { q.Enqueue(nil) })
}

func TestProcessQueue_InsertByArrival_StableForTies(t *testing.T) {
	// GIVEN processes inserted out of arrival order, with a tie at 5
	q := &ProcessQueue{}
	q.InsertByArrival(&Process{ID: "t5a", ArrivalTime: 5})
	q.InsertByArrival(&Process{ID: "t0", ArrivalTime: 0})
	q.InsertByArrival(&Process{ID: "t9", ArrivalTime: 9})
	q.InsertByArrival(&Process{ID: "t5b", ArrivalTime: 5})

	// THEN the queue is sorted and ties keep insertion order
	assert.Equal(t, []string{"t0", "t5a", "t5b", "t9"}, q.IDs())
	assert.Equal(t, "[t0 t5a t5b t9]", q.String())
}
