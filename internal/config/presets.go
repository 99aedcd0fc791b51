package config

import (
	"sort"

	"github.com/san-kum/evsim/internal/perturb"
)

func scale(component int, k float64) perturb.Perturbation {
	return perturb.Perturbation{Component: component, Op: perturb.OpScale, Value: k}
}

func add(component int, v float64) perturb.Perturbation {
	return perturb.Perturbation{Component: component, Op: perturb.OpAdd, Value: v}
}

var Presets = map[string]map[string]*Scenario{
	"lotka": {
		"drought": {
			Model: "lotka", DtMin: 1e-3, DtMax: 0.01, Duration: 20.0,
			InitState: []float64{10, 4},
			Events: []EventConfig{
				{Label: "large_drought", Time: 10, Actions: []perturb.Perturbation{scale(0, 0.3)}},
				{Label: "recurring_drought", Time: 4, Every: 3, Actions: []perturb.Perturbation{scale(0, 0.5)}},
			},
		},
		"free": {
			Model: "lotka", DtMin: 1e-3, DtMax: 0.01, MaxSteps: 1000,
			InitState: []float64{10, 4},
		},
		"culling": {
			Model: "lotka", DtMin: 1e-3, DtMax: 0.01, Duration: 30.0,
			InitState: []float64{10, 4},
			Events: []EventConfig{
				{Label: "cull", Time: 5, Every: 5, Actions: []perturb.Perturbation{scale(1, 0.5)}},
			},
		},
	},
	"ramp": {
		"default": {
			Model: "ramp", DtMin: 1e-6, DtMax: 0.01, MaxSteps: 100,
			InitState: []float64{0.5},
		},
		"stepped": {
			Model: "ramp", DtMin: 1e-4, DtMax: 0.01, Duration: 2.0,
			InitState: []float64{0.5},
			Events: []EventConfig{
				{Label: "jump", Time: 1, Actions: []perturb.Perturbation{add(0, 1)}},
			},
		},
	},
	"pendulum": {
		"kicked": {
			Model: "pendulum", DtMin: 1e-3, DtMax: 0.01, Duration: 20.0,
			InitState: []float64{0.2, 0},
			Events: []EventConfig{
				{Label: "kick", Time: 5, Every: 5, Actions: []perturb.Perturbation{add(1, 1.5)}},
			},
		},
	},
	"vanderpol": {
		"reset": {
			Model: "vanderpol", DtMin: 1e-3, DtMax: 0.01, Duration: 30.0,
			Params:    map[string]float64{"mu": 2},
			InitState: []float64{2, 0},
			Events: []EventConfig{
				{Label: "damp", Time: 15, Actions: []perturb.Perturbation{scale(0, 0.1), scale(1, 0.1)}},
			},
		},
	},
	"lorenz": {
		"nudge": {
			Model: "lorenz", DtMin: 1e-4, DtMax: 0.005, Duration: 20.0,
			InitState: []float64{1, 1, 1},
			Events: []EventConfig{
				{Label: "nudge", Time: 10, Actions: []perturb.Perturbation{add(0, 1e-3)}},
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Scenario {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	sc, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return sc.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListModels() []string {
	models := make([]string, 0, len(Presets))
	for m := range Presets {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}

// Clone returns a deep copy so callers can override fields safely.
func (s *Scenario) Clone() *Scenario {
	c := *s
	if s.Params != nil {
		c.Params = make(map[string]float64, len(s.Params))
		for k, v := range s.Params {
			c.Params[k] = v
		}
	}
	c.InitState = append([]float64(nil), s.InitState...)
	c.Events = make([]EventConfig, len(s.Events))
	for i, ev := range s.Events {
		ev.Actions = append([]perturb.Perturbation(nil), ev.Actions...)
		c.Events[i] = ev
	}
	return &c
}
