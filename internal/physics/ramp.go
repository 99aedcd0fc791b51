package physics

import (
	"fmt"

	"github.com/san-kum/evsim/internal/dynamo"
)

// Ramp is the one-dimensional system dx/dt = Rate·t.
type Ramp struct {
	Rate float64
}

func NewRamp() *Ramp { return &Ramp{Rate: 2.0} }

func (r *Ramp) StateDim() int { return 1 }

func (r *Ramp) Derive(_ dynamo.State, t float64) dynamo.State {
	return dynamo.State{r.Rate * t}
}

// DeriveScalar is Derive for a scalar state.
func (r *Ramp) DeriveScalar(_ dynamo.Scalar, t float64) dynamo.Scalar {
	return dynamo.Scalar(r.Rate * t)
}

func (r *Ramp) DefaultState() dynamo.State { return dynamo.State{0.5} }

// Exact returns the analytic solution from x0 at time zero.
func (r *Ramp) Exact(x0, t float64) float64 { return x0 + r.Rate*t*t/2 }

func (r *Ramp) GetParams() map[string]float64 {
	return map[string]float64{"rate": r.Rate}
}

func (r *Ramp) SetParam(name string, value float64) error {
	if name != "rate" {
		return fmt.Errorf("unknown param: %s", name)
	}
	r.Rate = value
	return nil
}
