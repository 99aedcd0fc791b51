package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/evsim/internal/config"
	"github.com/san-kum/evsim/internal/dynamo"
	"github.com/san-kum/evsim/internal/metrics"
	"github.com/san-kum/evsim/internal/sim"
)

// Experiment assembles a scenario into a ready-to-run simulator.
type Experiment struct {
	scenario  *config.Scenario
	registry  *Registry
	logger    *slog.Logger
	dyn       dynamo.System
	simulator *sim.Simulator
}

func New(sc *config.Scenario, reg *Registry, logger *slog.Logger) *Experiment {
	if reg == nil {
		reg = NewRegistry()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Experiment{scenario: sc, registry: reg, logger: logger}
}

// Setup builds the model, applies parameter overrides and attaches the
// default metrics.
func (e *Experiment) Setup() error {
	if err := e.scenario.Validate(); err != nil {
		return err
	}
	dyn, err := e.build()
	if err != nil {
		return err
	}
	e.dyn = dyn
	e.simulator = e.newSimulator(dyn)
	return nil
}

func (e *Experiment) build() (dynamo.System, error) {
	dyn, err := e.registry.GetModel(e.scenario.Model)
	if err != nil {
		return nil, err
	}
	if len(e.scenario.Params) == 0 {
		return dyn, nil
	}
	c, ok := dyn.(dynamo.Configurable)
	if !ok {
		return nil, fmt.Errorf("model %s takes no parameters", e.scenario.Model)
	}
	for name, v := range e.scenario.Params {
		if err := c.SetParam(name, v); err != nil {
			return nil, fmt.Errorf("model %s: %w", e.scenario.Model, err)
		}
	}
	return dyn, nil
}

func (e *Experiment) newSimulator(dyn dynamo.System) *sim.Simulator {
	s := sim.New(dyn, e.logger)
	for _, m := range e.registry.DefaultMetrics(dyn) {
		s.AddMetric(m)
	}
	return s
}

// InitState returns the scenario's initial state, or the model default.
func (e *Experiment) InitState() dynamo.State {
	if len(e.scenario.InitState) == 0 {
		return e.dyn.DefaultState()
	}
	x0 := make(dynamo.State, len(e.scenario.InitState))
	copy(x0, e.scenario.InitState)
	return x0
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.InitState(), e.scenario.ToSimConfig())
}

// Sweep runs the scenario once per dt_max in parallel. Each run gets its own
// model instance and metrics.
func (e *Experiment) Sweep(ctx context.Context, dtMaxes []float64) ([]*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	base := e.scenario.ToSimConfig()
	cfgs := make([]sim.Config, len(dtMaxes))
	for i, h := range dtMaxes {
		cfgs[i] = base
		cfgs[i].DtMax = h
		if cfgs[i].DtMin > h {
			cfgs[i].DtMin = h
		}
	}

	ens := sim.NewEnsemble(func() *sim.Simulator {
		dyn, err := e.build()
		if err != nil {
			// Setup already built this model once.
			dyn = e.dyn
		}
		return e.newSimulator(dyn)
	})
	return ens.Run(ctx, e.InitState(), cfgs)
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Model() dynamo.System {
	return e.dyn
}

func (e *Experiment) Scenario() *config.Scenario {
	return e.scenario
}

// FirstBreach reports the first sample of the last run that left the
// stability bound.
func (e *Experiment) FirstBreach() (metrics.Breach, bool) {
	if e.simulator == nil {
		return metrics.Breach{}, false
	}
	st, ok := e.simulator.Metric("stability").(*metrics.Stability)
	if !ok {
		return metrics.Breach{}, false
	}
	return st.FirstBreach()
}

func (e *Experiment) Logger() *slog.Logger {
	return e.logger
}
