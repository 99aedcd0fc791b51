package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/evsim/internal/dynamo"
	"github.com/san-kum/evsim/internal/integrators"
)

// Simulator runs one model through an event-aware stepper, applying the
// configured perturbations whenever an event fires. A Simulator is not safe
// for concurrent use; see Ensemble for parallel runs.
type Simulator struct {
	dyn       dynamo.System
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

// New creates a simulator for dyn. A nil logger discards output.
func New(dyn dynamo.System, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Simulator{
		dyn:       dyn,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    logger,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Metric returns the attached metric with the given name, or nil.
func (s *Simulator) Metric(name string) Metric {
	for _, m := range s.metrics {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

// NewStepper builds a stepper for the model with cfg's step bounds and
// events.
func (s *Simulator) NewStepper(x0 dynamo.State, cfg Config) (*integrators.EventStepper[dynamo.State], error) {
	stepper, err := integrators.NewEventStepper(x0.Clone(), s.dyn.Derive, cfg.DtMax, cfg.DtMin)
	if err != nil {
		return nil, err
	}
	for _, ev := range cfg.Events {
		if err := stepper.InsertEvent(ev.Time, ev.Label, ev.Every); err != nil {
			return nil, fmt.Errorf("schedule %q: %w", ev.Label, err)
		}
	}
	return stepper, nil
}

// Run integrates from x0 until Duration is reached (draining any events
// due at the final instant), MaxSteps is hit, or ctx is canceled. On
// cancellation the partial result is returned with ctx.Err().
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	stepper, err := s.NewStepper(x0, cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{
		States:  []dynamo.State{stepper.State().Clone()},
		Times:   []float64{stepper.Time()},
		Dts:     []float64{stepper.Dt()},
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(stepper.State(), stepper.Time())
	}

	s.logger.Info("run starting",
		"dt_min", cfg.DtMin,
		"dt_max", cfg.DtMax,
		"duration", cfg.Duration,
		"events", len(cfg.Events))

	for s.more(stepper, cfg, result) {
		select {
		case <-ctx.Done():
			s.finish(stepper, result)
			return result, ctx.Err()
		default:
		}

		stepper.Step()

		if stepper.IsEvent() {
			if err := s.fire(stepper, cfg, result); err != nil {
				s.finish(stepper, result)
				return result, err
			}
		}

		x, t := stepper.State(), stepper.Time()
		if cfg.ValidateState && !x.IsValid() {
			s.finish(stepper, result)
			return result, &dynamo.SimulationError{
				Step:    stepper.Steps(),
				Time:    t,
				State:   x.Clone(),
				Wrapped: dynamo.ErrInvalidState,
			}
		}

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
		result.Dts = append(result.Dts, stepper.Dt())

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}
	}

	s.finish(stepper, result)
	s.logger.Info("run finished",
		"t", stepper.Time(),
		"steps", result.Steps,
		"events", len(result.Events),
		"rejected", result.Stats.Rejected)

	return result, nil
}

func (s *Simulator) more(stepper *integrators.EventStepper[dynamo.State], cfg Config, result *Result) bool {
	if stepper.Draining() {
		return true
	}
	if cfg.MaxSteps > 0 && stepper.Steps() >= cfg.MaxSteps {
		result.Truncated = cfg.Duration > 0 && stepper.Time() < cfg.Duration
		return false
	}
	return cfg.Duration <= 0 || stepper.Time() < cfg.Duration
}

func (s *Simulator) fire(stepper *integrators.EventStepper[dynamo.State], cfg Config, result *Result) error {
	label, t := stepper.Event(), stepper.Time()
	x := stepper.State()
	before := x.Clone()

	applied, err := cfg.Actions.Apply(label, x)
	if err != nil {
		return &dynamo.SimulationError{Step: stepper.Steps(), Time: t, State: before, Wrapped: err}
	}

	result.Events = append(result.Events, Firing{
		Label:  label,
		Time:   t,
		Step:   stepper.Steps(),
		Before: before,
		After:  x.Clone(),
	})

	for _, m := range s.metrics {
		if eo, ok := m.(EventObserver); ok {
			eo.OnEvent(label, x, t)
		}
	}
	for _, obs := range s.observers {
		if eo, ok := obs.(EventObserver); ok {
			eo.OnEvent(label, x, t)
		}
	}

	s.logger.Debug("event fired",
		"label", label,
		"t", t,
		"step", stepper.Steps(),
		"actions", applied)
	return nil
}

func (s *Simulator) finish(stepper *integrators.EventStepper[dynamo.State], result *Result) {
	result.Steps = stepper.Steps()
	result.Stats = stepper.Stats()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validate(x0 dynamo.State, cfg Config) error {
	if cfg.Duration <= 0 && cfg.MaxSteps <= 0 {
		return fmt.Errorf("need a positive duration or step limit, got duration=%g max_steps=%d", cfg.Duration, cfg.MaxSteps)
	}
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("%w: initial state has %d components, model wants %d", dynamo.ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	if err := cfg.Actions.Validate(len(x0)); err != nil {
		return err
	}
	return nil
}
