package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/evsim/internal/dynamo"
)

// Pendulum is a damped rigid pendulum.
// State: [θ, ω]
//
//	dθ/dt = ω
//	dω/dt = -(b·ω + m·g·L·sin θ) / (m·L²)
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{Mass: 1, Length: 1, Damping: 0.1, Gravity: 9.81}
}

func (p *Pendulum) StateDim() int { return 2 }

func (p *Pendulum) Derive(s dynamo.State, _ float64) dynamo.State {
	theta, omega := s[0], s[1]
	inertia := p.Mass * p.Length * p.Length
	torque := -p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta)
	return dynamo.State{omega, torque / inertia}
}

func (p *Pendulum) DefaultState() dynamo.State { return dynamo.State{0.5, 0} }

// Energy is kinetic plus potential energy, measured from the bottom of the
// swing. It decays when Damping is positive, and jumps when a kick event
// changes ω.
func (p *Pendulum) Energy(s dynamo.State) float64 {
	speed := p.Length * s[1]
	height := p.Length * (1 - math.Cos(s[0]))
	return p.Mass * (speed*speed/2 + p.Gravity*height)
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    p.Mass,
		"length":  p.Length,
		"damping": p.Damping,
		"gravity": p.Gravity,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	field, ok := map[string]*float64{
		"mass":    &p.Mass,
		"length":  &p.Length,
		"damping": &p.Damping,
		"gravity": &p.Gravity,
	}[name]
	if !ok {
		return fmt.Errorf("unknown param: %s", name)
	}
	*field = value
	return nil
}
