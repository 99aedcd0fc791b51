package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/evsim/internal/dynamo"
	"github.com/san-kum/evsim/internal/perturb"
)

func TestDefaultScenario(t *testing.T) {
	sc := DefaultScenario()

	if sc.Model != "lotka" {
		t.Errorf("expected model lotka, got %s", sc.Model)
	}
	if err := sc.Validate(); err != nil {
		t.Errorf("default scenario should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	sc := GetPreset("lotka", "drought")
	if sc == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(sc.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(sc.Events))
	}
	if sc.Events[1].Every != 3 {
		t.Errorf("expected recurrence 3, got %f", sc.Events[1].Every)
	}

	// Presets are copied out.
	sc.Events[0].Actions[0].Value = 99
	if Presets["lotka"]["drought"].Events[0].Actions[0].Value != 0.3 {
		t.Error("modifying a preset copy changed the preset")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("lotka", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "drought") != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("lotka")
	want := []string{"culling", "drought", "free"}
	if len(presets) != len(want) {
		t.Fatalf("expected %v, got %v", want, presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("expected %v, got %v", want, presets)
		}
	}

	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, model := range ListModels() {
		for _, name := range ListPresets(model) {
			if err := GetPreset(model, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", model, name, err)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scenario)
		target error
	}{
		{"swapped bounds", func(s *Scenario) { s.DtMin, s.DtMax = 0.1, 0.01 }, dynamo.ErrInvalidConfiguration},
		{"zero dt_min", func(s *Scenario) { s.DtMin = 0 }, dynamo.ErrInvalidConfiguration},
		{"no stop", func(s *Scenario) { s.Duration = 0 }, dynamo.ErrInvalidConfiguration},
		{"negative every", func(s *Scenario) {
			s.Events = []EventConfig{{Label: "x", Time: 1, Every: -1}}
		}, dynamo.ErrNegativeRecurrence},
		{"NaN every", func(s *Scenario) {
			s.Events = []EventConfig{{Label: "x", Time: 1, Every: math.NaN()}}
		}, dynamo.ErrNegativeRecurrence},
		{"every too small to advance", func(s *Scenario) {
			s.Events = []EventConfig{{Label: "x", Time: 0.5, Every: 1e-300}}
		}, dynamo.ErrInvalidConfiguration},
		{"missing model", func(s *Scenario) { s.Model = "" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := DefaultScenario()
			tt.mutate(sc)
			err := sc.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestToSimConfig(t *testing.T) {
	sc := GetPreset("vanderpol", "reset")
	sc.Events = append(sc.Events, EventConfig{Label: "damp", Time: 25, Actions: []perturb.Perturbation{
		{Component: 0, Op: perturb.OpSet, Value: 0},
	}})

	cfg := sc.ToSimConfig()
	if cfg.DtMin != sc.DtMin || cfg.DtMax != sc.DtMax || cfg.Duration != sc.Duration {
		t.Errorf("step bounds not copied: %+v", cfg)
	}
	if len(cfg.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(cfg.Events))
	}
	if len(cfg.Actions["damp"]) != 3 {
		t.Errorf("expected actions to be merged by label, got %d", len(cfg.Actions["damp"]))
	}
	if !cfg.ValidateState {
		t.Error("state validation should be on")
	}
}

func TestEventLabels(t *testing.T) {
	sc := GetPreset("lotka", "drought")
	labels := sc.EventLabels()
	if len(labels) != 2 || labels[0] != "large_drought" || labels[1] != "recurring_drought" {
		t.Errorf("unexpected labels %v", labels)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")

	sc := GetPreset("lotka", "drought")
	if err := Save(path, sc); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Model != "lotka" || loaded.Duration != 20 {
		t.Errorf("unexpected scenario %+v", loaded)
	}
	if len(loaded.Events) != 2 || loaded.Events[0].Actions[0].Op != perturb.OpScale {
		t.Errorf("events not round-tripped: %+v", loaded.Events)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "min.yaml")
	data := []byte("model: ramp\ninit_state: [0.5]\nevents:\n  - label: jump\n    time: 1\n    actions:\n      - {component: 0, op: add, value: 2}\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.DtMax != DefaultDtMax || sc.DtMin != DefaultDtMin {
		t.Errorf("expected default step bounds, got %g/%g", sc.DtMin, sc.DtMax)
	}
	if sc.Events[0].Actions[0].Value != 2 {
		t.Errorf("unexpected action %+v", sc.Events[0].Actions[0])
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("model: ramp\ndt_min: 1\ndt_max: 0.1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("expected invalid configuration, got %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
