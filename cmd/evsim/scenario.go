package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/evsim/internal/config"
	"github.com/san-kum/evsim/internal/perturb"
)

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// resolveScenario builds the scenario from, in increasing priority, the
// defaults, a preset, a config file and explicitly set flags.
func resolveScenario(cmd *cobra.Command, args []string) (*config.Scenario, error) {
	sc := config.DefaultScenario()
	if len(args) > 0 {
		sc.Model = args[0]
	}

	if preset != "" {
		p := config.GetPreset(sc.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(sc.Model))
		}
		sc = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		sc = loaded
		if len(args) > 0 {
			sc.Model = args[0]
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt-min") {
		sc.DtMin = dtMin
	}
	if flags.Changed("dt-max") {
		sc.DtMax = dtMax
	}
	if flags.Changed("time") {
		sc.Duration = duration
	}
	if flags.Changed("max-steps") {
		sc.MaxSteps = maxSteps
	}
	if flags.Changed("init") {
		sc.InitState = append([]float64(nil), initState...)
	}
	if flags.Changed("param") {
		if sc.Params == nil {
			sc.Params = make(map[string]float64)
		}
		for name, raw := range params {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", name, err)
			}
			sc.Params[name] = v
		}
	}

	for _, spec := range events {
		ev, err := parseEvent(spec)
		if err != nil {
			return nil, err
		}
		sc.Events = append(sc.Events, ev)
	}
	for _, spec := range actions {
		label, act, err := parseAction(spec)
		if err != nil {
			return nil, err
		}
		if err := attachAction(sc, label, act); err != nil {
			return nil, err
		}
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// parseEvent reads label@time or label@time/every.
func parseEvent(spec string) (config.EventConfig, error) {
	label, rest, ok := strings.Cut(spec, "@")
	if !ok || label == "" {
		return config.EventConfig{}, fmt.Errorf("event %q: want label@time[/every]", spec)
	}
	at, every, recurring := strings.Cut(rest, "/")

	ev := config.EventConfig{Label: label}
	var err error
	if ev.Time, err = strconv.ParseFloat(at, 64); err != nil {
		return config.EventConfig{}, fmt.Errorf("event %q: %w", spec, err)
	}
	if recurring {
		if ev.Every, err = strconv.ParseFloat(every, 64); err != nil {
			return config.EventConfig{}, fmt.Errorf("event %q: %w", spec, err)
		}
	}
	return ev, nil
}

// parseAction reads label:component:op:value.
func parseAction(spec string) (string, perturb.Perturbation, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 4 {
		return "", perturb.Perturbation{}, fmt.Errorf("action %q: want label:component:op:value", spec)
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", perturb.Perturbation{}, fmt.Errorf("action %q: %w", spec, err)
	}
	v, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return "", perturb.Perturbation{}, fmt.Errorf("action %q: %w", spec, err)
	}
	return parts[0], perturb.Perturbation{Component: idx, Op: perturb.Op(parts[2]), Value: v}, nil
}

// attachAction adds act to the first event with label.
func attachAction(sc *config.Scenario, label string, act perturb.Perturbation) error {
	for i := range sc.Events {
		if sc.Events[i].Label == label {
			sc.Events[i].Actions = append(sc.Events[i].Actions, act)
			return nil
		}
	}
	return fmt.Errorf("action for unscheduled event %q", label)
}
