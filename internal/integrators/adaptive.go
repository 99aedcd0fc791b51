package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/evsim/internal/dynamo"
)

const (
	// rejectRatio is the relative gap between the Euler and midpoint endpoint
	// magnitudes above which a step is treated as too coarse.
	rejectRatio = 0.05

	// growAfter is the accepted-step streak that unlocks doubling dt.
	growAfter = 8
)

// Stats counts what the stepper has done so far.
type Stats struct {
	Accepted    int
	Rejected    int
	Landings    int
	Evaluations int
}

// Adaptive is a first-order explicit integrator with a cheap step-size
// controller: each step compares a forward Euler endpoint against a
// midpoint-corrected one and halves dt when they disagree by more than 5%.
// A rejected step still commits half of the Euler step, so time always
// moves forward.
type Adaptive[V dynamo.Vector[V]] struct {
	x     V
	f     dynamo.Derivative[V]
	t     float64
	dt    float64
	dtMin float64
	dtMax float64

	goodSteps int
	steps     int
	stats     Stats
}

// NewAdaptive creates a stepper at t=0 with dt=dtMin. It requires
// 0 < dtMin <= dtMax.
func NewAdaptive[V dynamo.Vector[V]](x0 V, f dynamo.Derivative[V], dtMax, dtMin float64) (*Adaptive[V], error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil derivative", dynamo.ErrInvalidConfiguration)
	}
	if !(dtMin > 0) || !(dtMax > 0) || dtMin > dtMax {
		return nil, fmt.Errorf("%w: dt_min=%g dt_max=%g", dynamo.ErrInvalidConfiguration, dtMin, dtMax)
	}
	return &Adaptive[V]{
		x:     x0,
		f:     f,
		dt:    dtMin,
		dtMin: dtMin,
		dtMax: dtMax,
	}, nil
}

func (a *Adaptive[V]) Time() float64 { return a.t }

// State returns the current state. For slice-backed states the result shares
// storage with the stepper, so in-place edits between steps take effect.
func (a *Adaptive[V]) State() V { return a.x }

// SetState replaces the current state, e.g. to apply an instantaneous
// perturbation.
func (a *Adaptive[V]) SetState(x V) { a.x = x }

func (a *Adaptive[V]) Dt() float64    { return a.dt }
func (a *Adaptive[V]) DtMin() float64 { return a.dtMin }
func (a *Adaptive[V]) DtMax() float64 { return a.dtMax }
func (a *Adaptive[V]) Steps() int     { return a.steps }
func (a *Adaptive[V]) Stats() Stats   { return a.stats }

// SetDt sets the next step size. h must lie in [DtMin, DtMax].
func (a *Adaptive[V]) SetDt(h float64) error {
	if !(h >= a.dtMin && h <= a.dtMax) {
		return fmt.Errorf("%w: %g not in [%g, %g]", dynamo.ErrOutOfRange, h, a.dtMin, a.dtMax)
	}
	a.dt = h
	return nil
}

// Step advances the state by one controlled step.
func (a *Adaptive[V]) Step() {
	a.steps++
	a.advance()
}

// advance runs the error-controlled step body with the current dt. It does
// not touch the step counter.
func (a *Adaptive[V]) advance() {
	dt := a.dt

	e1 := a.f(a.x, a.t)
	eulerIncr := e1.Scale(dt)
	half := a.x.Add(eulerIncr.Div(2))
	e2 := a.f(half, a.t+dt/2)
	a.stats.Evaluations += 2

	full := a.x.Add(eulerIncr).Norm()
	mid := half.Add(e2.Scale(dt).Div(2)).Norm()

	if tooCoarse(full, mid) {
		a.x = half
		a.t += dt / 2
		a.dt = math.Max(dt/2, a.dtMin)
		a.goodSteps = 0
		a.stats.Rejected++
	} else {
		a.x = a.x.Add(eulerIncr)
		a.t += dt
		a.goodSteps++
		a.stats.Accepted++
	}

	if a.dt < a.dtMax && a.goodSteps >= growAfter {
		a.dt *= 2
	}
	if a.dt > a.dtMax {
		a.dt = a.dtMax
	}
}

// land takes a single plain Euler step that ends exactly at target, then
// restarts step-size growth from dtMin. A target at or before the current
// time leaves state and time untouched.
func (a *Adaptive[V]) land(target float64) {
	if dt := target - a.t; dt > 0 {
		a.x = eulerStep(a.f, a.x, a.t, dt)
		a.t = target
		a.stats.Evaluations++
	}
	a.dt = a.dtMin
	a.goodSteps = 0
	a.stats.Landings++
}

// tooCoarse reports whether the two endpoint magnitudes disagree by more than
// rejectRatio relative to their mean. Two zero magnitudes agree.
func tooCoarse(full, mid float64) bool {
	mean := math.Abs(full+mid) / 2
	if mean == 0 {
		return false
	}
	return math.Abs(full-mid)/mean > rejectRatio
}
