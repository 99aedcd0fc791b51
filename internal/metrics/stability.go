package metrics

import (
	"math"

	"github.com/san-kum/evsim/internal/dynamo"
)

// Breach is the first sample that left the stability bound.
type Breach struct {
	Time float64
	// After is the label of the most recent event before the breach, or ""
	// when none had fired yet. Since is the time elapsed since that event,
	// or since the first sample.
	After string
	Since float64
}

// Stability is the fraction of samples whose components all stay within
// threshold. It also remembers the first breach and which event preceded
// it, so a perturbation that tips the system over can be identified.
type Stability struct {
	threshold float64
	samples   int
	inside    int

	started   bool
	lastLabel string
	lastTime  float64
	breach    *Breach
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x dynamo.State, t float64) {
	if !s.started {
		s.started = true
		s.lastTime = t
	}
	s.samples++
	if s.within(x) {
		s.inside++
		return
	}
	if s.breach == nil {
		s.breach = &Breach{Time: t, After: s.lastLabel, Since: t - s.lastTime}
	}
}

func (s *Stability) within(x dynamo.State) bool {
	for _, v := range x {
		if !(math.Abs(v) <= s.threshold) {
			return false
		}
	}
	return true
}

// OnEvent marks the event the next breach will be attributed to.
func (s *Stability) OnEvent(label string, _ dynamo.State, t float64) {
	s.started = true
	s.lastLabel = label
	s.lastTime = t
}

// FirstBreach returns the first out-of-bound sample, if any.
func (s *Stability) FirstBreach() (Breach, bool) {
	if s.breach == nil {
		return Breach{}, false
	}
	return *s.breach, true
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1
	}
	return float64(s.inside) / float64(s.samples)
}

func (s *Stability) Reset() {
	*s = Stability{threshold: s.threshold}
}
