// Package calendar provides a time-ordered queue of discrete events.
//
// The earliest event is always at the top. Events scheduled for the same
// instant come out in insertion order. An event with a positive recurrence
// interval re-inserts itself one interval later each time it is popped.
package calendar

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/evsim/internal/dynamo"
)

// Event is a labelled instant on the calendar. Every is zero for one-shot
// events.
type Event struct {
	Time  float64
	Label string
	Every float64

	seq uint64
}

// Recurring reports whether the event re-inserts itself after firing.
func (e Event) Recurring() bool { return e.Every > 0 }

type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// Queue is a min-time priority queue of events. It is not safe for
// concurrent use.
type Queue struct {
	events  eventHeap
	nextSeq uint64
}

func New() *Queue {
	return &Queue{events: make(eventHeap, 0)}
}

// Insert schedules label at t. A positive every makes the event recur.
func (q *Queue) Insert(t float64, label string, every float64) error {
	if every < 0 || math.IsNaN(every) {
		return fmt.Errorf("%w: got %g for %q", dynamo.ErrNegativeRecurrence, every, label)
	}
	if math.IsNaN(t) {
		return fmt.Errorf("calendar: event %q has NaN time", label)
	}
	if every > 0 && !(t+every > t) {
		return fmt.Errorf("%w: interval %g does not advance event %q past t=%g",
			dynamo.ErrInvalidConfiguration, every, label, t)
	}
	q.push(Event{Time: t, Label: label, Every: every})
	return nil
}

func (q *Queue) push(e Event) {
	e.seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.events, e)
}

// Peek returns the earliest event without removing it.
func (q *Queue) Peek() (Event, error) {
	if len(q.events) == 0 {
		return Event{}, dynamo.ErrEmptyCalendar
	}
	return q.events[0], nil
}

func (q *Queue) PeekTime() (float64, error) {
	e, err := q.Peek()
	return e.Time, err
}

func (q *Queue) PeekLabel() (string, error) {
	e, err := q.Peek()
	return e.Label, err
}

// Pop removes the earliest event and returns it. A recurring event is
// re-inserted at Time+Every before Pop returns, unless Time+Every rounds back
// to Time, in which case this firing is its last. ok is false when the queue
// was empty.
func (q *Queue) Pop() (e Event, ok bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	e = heap.Pop(&q.events).(Event)
	if next := e.Time + e.Every; e.Recurring() && next > e.Time {
		q.push(Event{Time: next, Label: e.Label, Every: e.Every})
	}
	return e, true
}

// RescheduleTop inserts a copy of the earliest event delta later and returns
// the copy's time. The original stays queued.
func (q *Queue) RescheduleTop(delta float64) (float64, error) {
	top, err := q.Peek()
	if err != nil {
		return 0, err
	}
	t := top.Time + delta
	q.push(Event{Time: t, Label: top.Label, Every: top.Every})
	return t, nil
}

func (q *Queue) Clear() {
	q.events = q.events[:0]
}

func (q *Queue) Empty() bool { return len(q.events) == 0 }

func (q *Queue) Len() int { return len(q.events) }

// Events returns the queued events in firing order.
func (q *Queue) Events() []Event {
	out := make([]Event, len(q.events))
	copy(out, q.events)
	sort.Slice(out, func(i, j int) bool {
		return eventHeap(out).Less(i, j)
	})
	return out
}
