package physics

import (
	"fmt"

	"github.com/san-kum/evsim/internal/dynamo"
)

// VanDerPol is the relaxation oscillator
//
//	dx/dt = y
//	dy/dt = μ(1 - x²)y - x
//
// Large μ gives sharp switching, which keeps the step controller busy.
type VanDerPol struct {
	mu float64
}

func NewVanDerPol() *VanDerPol { return &VanDerPol{mu: 1} }

func (v *VanDerPol) StateDim() int { return 2 }

func (v *VanDerPol) Derive(s dynamo.State, _ float64) dynamo.State {
	x, y := s[0], s[1]
	return dynamo.State{y, v.mu*(1-x*x)*y - x}
}

func (v *VanDerPol) DefaultState() dynamo.State { return dynamo.State{2, 0} }

func (v *VanDerPol) GetParams() map[string]float64 {
	return map[string]float64{"mu": v.mu}
}

func (v *VanDerPol) SetParam(name string, value float64) error {
	if name != "mu" {
		return fmt.Errorf("unknown param: %s", name)
	}
	v.mu = value
	return nil
}
