package metrics

import "github.com/san-kum/evsim/internal/dynamo"

// Peak is the largest state norm seen.
type Peak struct {
	max float64
}

func NewPeak() *Peak { return &Peak{} }

func (p *Peak) Name() string { return "peak_norm" }

func (p *Peak) Observe(x dynamo.State, t float64) {
	if n := x.Norm(); n > p.max {
		p.max = n
	}
}

func (p *Peak) Value() float64 { return p.max }

func (p *Peak) Reset() { p.max = 0 }

// EventCount counts event firings per run.
type EventCount struct {
	count int
}

func NewEventCount() *EventCount { return &EventCount{} }

func (c *EventCount) Name() string { return "events" }

func (c *EventCount) Observe(dynamo.State, float64) {}

func (c *EventCount) OnEvent(string, dynamo.State, float64) { c.count++ }

func (c *EventCount) Value() float64 { return float64(c.count) }

func (c *EventCount) Reset() { c.count = 0 }
