package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/evsim/internal/dynamo"
)

// LotkaVolterra implements the predator-prey equations.
// State: [prey, predator]
//
//	dx/dt = αx - βxy
//	dy/dt = -γy + δxy
type LotkaVolterra struct {
	Alpha float64
	Beta  float64
	Gamma float64
	Delta float64
}

func NewLotkaVolterra() *LotkaVolterra {
	return &LotkaVolterra{Alpha: 1.5, Beta: 1.0, Gamma: 3.0, Delta: 1.0}
}

func (l *LotkaVolterra) StateDim() int { return 2 }

func (l *LotkaVolterra) Derive(s dynamo.State, _ float64) dynamo.State {
	x, y := s[0], s[1]
	return dynamo.State{
		l.Alpha*x - l.Beta*x*y,
		-l.Gamma*y + l.Delta*x*y,
	}
}

func (l *LotkaVolterra) DefaultState() dynamo.State { return dynamo.State{10, 4} }

// Energy returns the first integral δx - γ ln x + βy - α ln y, which is
// constant along exact trajectories with positive populations.
func (l *LotkaVolterra) Energy(s dynamo.State) float64 {
	x, y := s[0], s[1]
	if x <= 0 || y <= 0 {
		return math.NaN()
	}
	return l.Delta*x - l.Gamma*math.Log(x) + l.Beta*y - l.Alpha*math.Log(y)
}

func (l *LotkaVolterra) GetParams() map[string]float64 {
	return map[string]float64{
		"alpha": l.Alpha,
		"beta":  l.Beta,
		"gamma": l.Gamma,
		"delta": l.Delta,
	}
}

func (l *LotkaVolterra) SetParam(name string, value float64) error {
	switch name {
	case "alpha":
		l.Alpha = value
	case "beta":
		l.Beta = value
	case "gamma":
		l.Gamma = value
	case "delta":
		l.Delta = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
