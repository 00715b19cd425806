package sim

import "container/heap"

// Event is a pending process resumption.
type Event struct {
	Due     int64   // tick at which Process resumes
	Seq     uint64  // insertion order, breaks ties on Due
	Process Process // process to resume
}

// eventHeap implements heap.Interface ordered by Due, then Seq.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Due != h[j].Due {
		return h[i].Due < h[j].Due
	}
	// Equal due times run in the order they were scheduled.
	return h[i].Seq < h[j].Seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = Event{}
	*h = old[0 : n-1]
	return item
}

// EventQueue holds pending resumptions in (due, sequence) order and owns the
// current tick: popping an event advances the tick to its due time.
// Ordering: due time → insertion sequence, so equal-time events are FIFO.
type EventQueue struct {
	events  eventHeap
	now     int64
	nextSeq uint64
}

// NewEventQueue creates an empty queue at tick 0.
func NewEventQueue() *EventQueue {
	q := &EventQueue{events: make(eventHeap, 0)}
	heap.Init(&q.events)
	return q
}

// Now returns the current tick.
func (q *EventQueue) Now() int64 {
	return q.now
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Schedule queues p to resume at due. Scheduling before the current tick
// fails with *InvalidTimeError.
func (q *EventQueue) Schedule(due int64, p Process) error {
	if due < q.now {
		return &InvalidTimeError{Now: q.now, Requested: due}
	}
	if p == nil {
		panic("Schedule: process must not be nil")
	}
	q.nextSeq++
	heap.Push(&q.events, Event{Due: due, Seq: q.nextSeq, Process: p})
	return nil
}

// PopNext removes and returns the earliest event and advances the current
// tick to its due time. ok is false when the queue is empty.
func (q *EventQueue) PopNext() (ev Event, ok bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	ev = heap.Pop(&q.events).(Event)
	if ev.Due < q.now {
		// Schedule guards this; reaching it means the heap was corrupted.
		panic("EventQueue: clock went backwards")
	}
	q.now = ev.Due
	return ev, true
}

// PeekNextTime returns the due time of the earliest event without removing it.
func (q *EventQueue) PeekNextTime() (int64, bool) {
	if len(q.events) == 0 {
		return 0, false
	}
	return q.events[0].Due, true
}

// Clear discards every pending event. The current tick is kept.
func (q *EventQueue) Clear() {
	q.events = q.events[:0]
}
