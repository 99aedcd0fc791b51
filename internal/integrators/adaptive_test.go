package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/evsim/internal/dynamo"
)

func ramp(_ dynamo.Scalar, t float64) dynamo.Scalar { return dynamo.Scalar(2 * t) }

func still(x dynamo.State, _ float64) dynamo.State { return make(dynamo.State, len(x)) }

func TestNewAdaptive_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name         string
		dtMax, dtMin float64
	}{
		{"zero dt_min", 0.01, 0},
		{"negative dt_min", 0.01, -1e-3},
		{"zero dt_max", 0, 0},
		{"inverted bounds", 1e-3, 0.01},
		{"NaN dt_min", 0.01, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdaptive[dynamo.Scalar](0, ramp, tt.dtMax, tt.dtMin)
			if !errors.Is(err, dynamo.ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}

	if _, err := NewAdaptive[dynamo.Scalar](0, nil, 0.01, 1e-3); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("nil derivative: expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestNewAdaptive_InitialState(t *testing.T) {
	a, err := NewAdaptive[dynamo.Scalar](0.5, ramp, 0.01, 1e-6)
	if err != nil {
		t.Fatal(err)
	}
	if a.Time() != 0 || a.Dt() != 1e-6 || a.Steps() != 0 || a.State() != 0.5 {
		t.Errorf("unexpected initial stepper: t=%g dt=%g steps=%d x=%g", a.Time(), a.Dt(), a.Steps(), a.State())
	}
}

func TestAdaptive_SetDt(t *testing.T) {
	a, _ := NewAdaptive[dynamo.Scalar](0, ramp, 0.1, 0.001)

	for _, h := range []float64{0.0005, 0.2, -1, math.NaN()} {
		if err := a.SetDt(h); !errors.Is(err, dynamo.ErrOutOfRange) {
			t.Errorf("SetDt(%g): expected ErrOutOfRange, got %v", h, err)
		}
		if a.Dt() != 0.001 {
			t.Errorf("rejected SetDt(%g) changed dt to %g", h, a.Dt())
		}
	}

	for _, h := range []float64{0.001, 0.05, 0.1} {
		if err := a.SetDt(h); err != nil {
			t.Errorf("SetDt(%g): %v", h, err)
		}
		if a.Dt() != h {
			t.Errorf("SetDt(%g) left dt at %g", h, a.Dt())
		}
	}
}

func TestAdaptive_RampTracksParabola(t *testing.T) {
	a, err := NewAdaptive[dynamo.Scalar](0.5, ramp, 0.01, 1e-6)
	if err != nil {
		t.Fatal(err)
	}

	committed := 0.0
	prev := a.Time()
	for a.Steps() < 100 {
		dt := a.Dt()
		a.Step()
		committed += dt

		if a.Time() <= prev {
			t.Fatalf("time did not increase at step %d: %g -> %g", a.Steps(), prev, a.Time())
		}
		prev = a.Time()
		if a.Dt() < a.DtMin() || a.Dt() > a.DtMax() {
			t.Fatalf("dt %g escaped [%g, %g]", a.Dt(), a.DtMin(), a.DtMax())
		}
	}

	if a.Stats().Rejected != 0 {
		t.Errorf("smooth ramp should never reject, got %d", a.Stats().Rejected)
	}
	if math.Abs(a.Time()-committed) > 1e-12 {
		t.Errorf("time %g differs from committed dt sum %g", a.Time(), committed)
	}

	tm := a.Time()
	exact := 0.5 + tm*tm
	got := float64(a.State())
	if math.Abs(got-exact) > 0.02 {
		t.Errorf("x(%g) = %g, want about %g", tm, got, exact)
	}
	if got > exact {
		t.Errorf("forward Euler on an increasing slope should undershoot: got %g > %g", got, exact)
	}
	if a.Stats().Evaluations != 200 {
		t.Errorf("expected 2 evaluations per step, got %d", a.Stats().Evaluations)
	}
}

func TestAdaptive_RejectCommitsHalfStep(t *testing.T) {
	decay := func(x dynamo.Scalar, _ float64) dynamo.Scalar { return -50 * x }
	a, _ := NewAdaptive[dynamo.Scalar](1, decay, 0.1, 0.001)
	if err := a.SetDt(0.1); err != nil {
		t.Fatal(err)
	}

	a.Step()

	if a.Stats().Rejected != 1 {
		t.Fatalf("expected a rejected step, stats %+v", a.Stats())
	}
	if math.Abs(a.Time()-0.05) > 1e-15 {
		t.Errorf("rejected step should advance half dt, t=%g", a.Time())
	}
	if math.Abs(float64(a.State())+1.5) > 1e-12 {
		t.Errorf("rejected step should commit half the Euler increment, x=%g", a.State())
	}
	if math.Abs(a.Dt()-0.05) > 1e-15 {
		t.Errorf("dt should halve to 0.05, got %g", a.Dt())
	}
	if a.Steps() != 1 {
		t.Errorf("steps = %d, want 1", a.Steps())
	}
}

func TestAdaptive_RejectClampsToDtMin(t *testing.T) {
	decay := func(x dynamo.Scalar, _ float64) dynamo.Scalar { return -50 * x }
	a, _ := NewAdaptive[dynamo.Scalar](1, decay, 0.1, 0.08)
	if err := a.SetDt(0.1); err != nil {
		t.Fatal(err)
	}
	a.Step()
	if a.Dt() != 0.08 {
		t.Errorf("dt should clamp to dt_min 0.08, got %g", a.Dt())
	}
}

func TestAdaptive_GrowthAfterStreak(t *testing.T) {
	a, _ := NewAdaptive(dynamo.State{1, 2}, still, 8, 1)

	want := []float64{1, 1, 1, 1, 1, 1, 1, 2, 4, 8, 8, 8}
	for i, w := range want {
		a.Step()
		if a.Dt() != w {
			t.Errorf("after step %d: dt = %g, want %g", i+1, a.Dt(), w)
		}
	}
	// 8 steps at 1, then 2, 4 and two at 8
	if a.Time() != 30 {
		t.Errorf("t = %g, want 30", a.Time())
	}
}

func TestAdaptive_ZeroStateAccepts(t *testing.T) {
	a, _ := NewAdaptive(dynamo.State{0, 0}, still, 0.1, 0.01)
	for i := 0; i < 20; i++ {
		a.Step()
	}
	if !a.State().IsValid() {
		t.Fatalf("zero state produced %v", a.State())
	}
	if a.Stats().Rejected != 0 || a.Stats().Accepted != 20 {
		t.Errorf("zero magnitudes should always accept, stats %+v", a.Stats())
	}
	if a.Time() <= 0 {
		t.Error("time did not advance")
	}
}

func TestAdaptive_StateIsShared(t *testing.T) {
	a, _ := NewAdaptive(dynamo.State{10, 4}, still, 0.1, 0.01)
	a.State()[0] *= 0.5
	if a.State()[0] != 5 {
		t.Errorf("in-place edit lost, state %v", a.State())
	}

	a.SetState(dynamo.State{1, 1})
	a.Step()
	if a.State()[0] != 1 || a.State()[1] != 1 {
		t.Errorf("SetState lost, state %v", a.State())
	}
}

func TestTooCoarse(t *testing.T) {
	tests := []struct {
		full, mid float64
		want      bool
	}{
		{0, 0, false},
		{1, 1, false},
		{1, 1.04, false},
		{1, 1.2, true},
		{4, 2.25, true},
	}
	for _, tt := range tests {
		if got := tooCoarse(tt.full, tt.mid); got != tt.want {
			t.Errorf("tooCoarse(%g, %g) = %v, want %v", tt.full, tt.mid, got, tt.want)
		}
	}
}
