package integrators

import (
	"github.com/san-kum/evsim/internal/calendar"
	"github.com/san-kum/evsim/internal/dynamo"
)

// EventStepper drives an Adaptive core so that it lands exactly on every
// scheduled event time. When several events share an instant, each Step call
// after the first drains one of them without advancing time.
type EventStepper[V dynamo.Vector[V]] struct {
	core     *Adaptive[V]
	calendar *calendar.Queue

	atEvent bool
	label   string
}

func NewEventStepper[V dynamo.Vector[V]](x0 V, f dynamo.Derivative[V], dtMax, dtMin float64) (*EventStepper[V], error) {
	core, err := NewAdaptive(x0, f, dtMax, dtMin)
	if err != nil {
		return nil, err
	}
	return &EventStepper[V]{core: core, calendar: calendar.New()}, nil
}

func (s *EventStepper[V]) Time() float64         { return s.core.Time() }
func (s *EventStepper[V]) State() V              { return s.core.State() }
func (s *EventStepper[V]) SetState(x V)          { s.core.SetState(x) }
func (s *EventStepper[V]) Dt() float64           { return s.core.Dt() }
func (s *EventStepper[V]) SetDt(h float64) error { return s.core.SetDt(h) }
func (s *EventStepper[V]) DtMin() float64        { return s.core.DtMin() }
func (s *EventStepper[V]) DtMax() float64        { return s.core.DtMax() }
func (s *EventStepper[V]) Steps() int            { return s.core.Steps() }
func (s *EventStepper[V]) Stats() Stats          { return s.core.Stats() }

// InsertEvent schedules label at t, recurring every interval when every > 0.
func (s *EventStepper[V]) InsertEvent(t float64, label string, every float64) error {
	return s.calendar.Insert(t, label, every)
}

// IsEvent reports whether the last Step call stopped on an event.
func (s *EventStepper[V]) IsEvent() bool { return s.atEvent }

// Event returns the label of the event the last Step stopped on, or "".
func (s *EventStepper[V]) Event() string {
	if !s.atEvent {
		return ""
	}
	return s.label
}

// Pending returns the number of queued events.
func (s *EventStepper[V]) Pending() int { return s.calendar.Len() }

// NextEvent returns the earliest queued event.
func (s *EventStepper[V]) NextEvent() (calendar.Event, bool) {
	e, err := s.calendar.Peek()
	return e, err == nil
}

// Draining reports whether the next Step call will only drain another event
// at the current instant.
func (s *EventStepper[V]) Draining() bool {
	next, ok := s.NextEvent()
	return s.atEvent && ok && next.Time == s.core.t
}

// Upcoming returns the queued events in firing order.
func (s *EventStepper[V]) Upcoming() []calendar.Event { return s.calendar.Events() }

func (s *EventStepper[V]) ClearEvents() { s.calendar.Clear() }

// Step either drains one more event at the current instant, or advances
// time by a controlled step that never passes the next event.
func (s *EventStepper[V]) Step() {
	c := s.core

	if s.Draining() {
		s.fire()
		return
	}

	s.atEvent = false
	s.label = ""
	c.steps++

	next, err := s.calendar.Peek()
	if err != nil {
		c.advance()
		return
	}

	for c.dt > c.dtMin && c.t+c.dt > next.Time {
		c.dt /= 2
	}
	if c.dt < c.dtMin {
		c.dt = c.dtMin
	}

	if c.dt == c.dtMin && c.t+c.dt > next.Time {
		c.land(next.Time)
		s.fire()
		return
	}

	c.advance()
	// a step that ends on the event fires it here, without a zero-length
	// landing call
	if c.t == next.Time {
		s.fire()
	}
}

func (s *EventStepper[V]) fire() {
	e, ok := s.calendar.Pop()
	if !ok {
		return
	}
	s.atEvent = true
	s.label = e.Label
}
