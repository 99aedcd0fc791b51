package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/evsim/internal/dynamo"
	"github.com/san-kum/evsim/internal/perturb"
	"github.com/san-kum/evsim/internal/sim"
)

const (
	DefaultModel    = "lotka"
	DefaultDtMin    = 1e-3
	DefaultDtMax    = 0.01
	DefaultDuration = 20.0
)

// Scenario is the on-disk description of one run.
type Scenario struct {
	Model     string             `yaml:"model"`
	Params    map[string]float64 `yaml:"params,omitempty"`
	InitState []float64          `yaml:"init_state,omitempty"`
	DtMin     float64            `yaml:"dt_min"`
	DtMax     float64            `yaml:"dt_max"`
	Duration  float64            `yaml:"duration"`
	MaxSteps  int                `yaml:"max_steps,omitempty"`
	Events    []EventConfig      `yaml:"events,omitempty"`
}

// EventConfig schedules a labelled event and the perturbations it applies.
// Several entries may share a label; their actions are concatenated.
type EventConfig struct {
	Label   string                 `yaml:"label"`
	Time    float64                `yaml:"time"`
	Every   float64                `yaml:"every,omitempty"`
	Actions []perturb.Perturbation `yaml:"actions,omitempty"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Model:    DefaultModel,
		DtMin:    DefaultDtMin,
		DtMax:    DefaultDtMax,
		Duration: DefaultDuration,
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := DefaultScenario()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields that do not depend on the model. State
// dimensions are checked when the scenario is assembled.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Model == "" {
		errs = append(errs, errors.New("model is required"))
	}
	if !(s.DtMin > 0) || !(s.DtMax > 0) || s.DtMin > s.DtMax {
		errs = append(errs, fmt.Errorf("%w: dt_min=%g dt_max=%g", dynamo.ErrInvalidConfiguration, s.DtMin, s.DtMax))
	}
	if s.Duration <= 0 && s.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("%w: need duration or max_steps", dynamo.ErrInvalidConfiguration))
	}
	if s.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("%w: max_steps=%d", dynamo.ErrInvalidConfiguration, s.MaxSteps))
	}
	for i, ev := range s.Events {
		if ev.Label == "" {
			errs = append(errs, fmt.Errorf("event %d: label is required", i))
		}
		switch {
		case !(ev.Every >= 0):
			errs = append(errs, fmt.Errorf("event %q: %w", ev.Label, dynamo.ErrNegativeRecurrence))
		case ev.Every > 0 && !(ev.Time+ev.Every > ev.Time):
			errs = append(errs, fmt.Errorf("%w: event %q interval %g does not advance t=%g",
				dynamo.ErrInvalidConfiguration, ev.Label, ev.Every, ev.Time))
		}
	}
	return errors.Join(errs...)
}

// ToSimConfig converts the scenario into a driver config.
func (s *Scenario) ToSimConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.DtMin = s.DtMin
	cfg.DtMax = s.DtMax
	cfg.Duration = s.Duration
	cfg.MaxSteps = s.MaxSteps

	for _, ev := range s.Events {
		cfg.Events = append(cfg.Events, sim.EventSpec{Label: ev.Label, Time: ev.Time, Every: ev.Every})
		if len(ev.Actions) == 0 {
			continue
		}
		if cfg.Actions == nil {
			cfg.Actions = make(perturb.Plan)
		}
		cfg.Actions[ev.Label] = append(cfg.Actions[ev.Label], ev.Actions...)
	}
	return cfg
}

// EventLabels returns the distinct event labels, sorted.
func (s *Scenario) EventLabels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, ev := range s.Events {
		if !seen[ev.Label] {
			seen[ev.Label] = true
			labels = append(labels, ev.Label)
		}
	}
	sort.Strings(labels)
	return labels
}
