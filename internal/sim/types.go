package sim

import (
	"fmt"

	"github.com/san-kum/evsim/internal/dynamo"
	"github.com/san-kum/evsim/internal/integrators"
	"github.com/san-kum/evsim/internal/perturb"
)

// Metric accumulates a scalar summary over the recorded trajectory.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every Step call.
type Observer interface {
	OnStep(x dynamo.State, t float64)
}

// EventObserver is notified after an event's perturbations are applied.
// Metrics and observers may implement it.
type EventObserver interface {
	OnEvent(label string, x dynamo.State, t float64)
}

// EventSpec schedules a labelled event. Every > 0 makes it recur.
type EventSpec struct {
	Label string
	Time  float64
	Every float64
}

type Config struct {
	DtMin    float64
	DtMax    float64
	Duration float64
	// MaxSteps caps the number of time-advancing steps. Zero means no cap.
	MaxSteps      int
	ValidateState bool
	Events        []EventSpec
	Actions       perturb.Plan
}

func DefaultConfig() Config {
	return Config{
		DtMin:         1e-3,
		DtMax:         0.01,
		Duration:      10.0,
		ValidateState: true,
	}
}

// Firing records one event occurrence.
type Firing struct {
	Label  string
	Time   float64
	Step   int
	Before dynamo.State
	After  dynamo.State
}

type Result struct {
	States  []dynamo.State
	Times   []float64
	Dts     []float64
	Events  []Firing
	Metrics map[string]float64
	Stats   integrators.Stats
	Steps   int
	// Truncated is set when MaxSteps stopped the run before Duration.
	Truncated bool
}

// Exhausted reports a truncated run as ErrStepBudget, or nil when the run
// reached its duration.
func (r *Result) Exhausted() error {
	if !r.Truncated {
		return nil
	}
	t := 0.0
	if n := len(r.Times); n > 0 {
		t = r.Times[n-1]
	}
	return fmt.Errorf("%w: %d steps, stopped at t=%g", dynamo.ErrStepBudget, r.Steps, t)
}
