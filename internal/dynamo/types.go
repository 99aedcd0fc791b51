package dynamo

import "math"

// Vector is the capability set the integrators need from a state type.
// Operations return new values and never mutate the receiver.
type Vector[V any] interface {
	Add(other V) V
	Sub(other V) V
	Scale(k float64) V
	Div(k float64) V
	Norm() float64
}

// Derivative is the right-hand side of dx/dt = f(x, t).
type Derivative[V any] func(x V, t float64) V

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Norm returns the sum of absolute component values.
func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += math.Abs(v)
	}
	return sum
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Div(divisor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] / divisor
	}
	return result
}

// Scalar is a one-dimensional state.
type Scalar float64

func (s Scalar) Add(other Scalar) Scalar { return s + other }
func (s Scalar) Sub(other Scalar) Scalar { return s - other }
func (s Scalar) Scale(k float64) Scalar  { return s * Scalar(k) }
func (s Scalar) Div(k float64) Scalar    { return s / Scalar(k) }
func (s Scalar) Norm() float64           { return math.Abs(float64(s)) }

// System is a named model whose dynamics are defined over State.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
	DefaultState() State
}

// Hamiltonian is implemented by systems with a conserved quantity.
type Hamiltonian interface {
	Energy(x State) float64
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
