package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/evsim/internal/dynamo"
	"github.com/san-kum/evsim/internal/metrics"
	"github.com/san-kum/evsim/internal/physics"
	"github.com/san-kum/evsim/internal/sim"
)

// stabilityBound is the component magnitude beyond which a sample counts as
// unstable.
const stabilityBound = 100.0

type Registry struct {
	models map[string]func() dynamo.System
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]func() dynamo.System),
	}

	r.models["lotka"] = func() dynamo.System { return physics.NewLotkaVolterra() }
	r.models["ramp"] = func() dynamo.System { return physics.NewRamp() }
	r.models["pendulum"] = func() dynamo.System { return physics.NewPendulum() }
	r.models["vanderpol"] = func() dynamo.System { return physics.NewVanDerPol() }
	r.models["lorenz"] = func() dynamo.System { return physics.NewLorenz() }

	return r
}

// Register adds or replaces a model constructor.
func (r *Registry) Register(name string, build func() dynamo.System) {
	r.models[name] = build
}

func (r *Registry) GetModel(name string) (dynamo.System, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh metrics for dyn. Energy drift is included
// only for models with a conserved quantity.
func (r *Registry) DefaultMetrics(dyn dynamo.System) []sim.Metric {
	ms := []sim.Metric{
		metrics.NewStability(stabilityBound),
		metrics.NewPeak(),
		metrics.NewEventCount(),
	}
	if h, ok := dyn.(dynamo.Hamiltonian); ok {
		ms = append(ms, metrics.NewEnergyDrift(h))
	}
	return ms
}
