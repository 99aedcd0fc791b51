package perturb

import (
	"errors"
	"testing"

	"github.com/san-kum/evsim/internal/dynamo"
)

func TestPerturbation_Apply(t *testing.T) {
	tests := []struct {
		name string
		p    Perturbation
		want dynamo.State
	}{
		{"scale", Perturbation{Component: 0, Op: OpScale, Value: 0.3}, dynamo.State{3, 4}},
		{"add", Perturbation{Component: 1, Op: OpAdd, Value: -1}, dynamo.State{10, 3}},
		{"set", Perturbation{Component: 1, Op: OpSet, Value: 7}, dynamo.State{10, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := dynamo.State{10, 4}
			if err := tt.p.Apply(x); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if x[0] != tt.want[0] || x[1] != tt.want[1] {
				t.Errorf("got %v, want %v", x, tt.want)
			}
		})
	}
}

func TestPerturbation_Invalid(t *testing.T) {
	x := dynamo.State{1, 2}

	err := Perturbation{Component: 2, Op: OpScale, Value: 2}.Apply(x)
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("out of range component: got %v", err)
	}

	if err := (Perturbation{Component: 0, Op: "double", Value: 2}).Apply(x); err == nil {
		t.Error("unknown op accepted")
	}

	if x[0] != 1 || x[1] != 2 {
		t.Errorf("failed perturbation modified state: %v", x)
	}
}

func TestPlan_Apply(t *testing.T) {
	plan := Plan{
		"large_drought":     {{Component: 0, Op: OpScale, Value: 0.3}},
		"recurring_drought": {{Component: 0, Op: OpScale, Value: 0.5}, {Component: 1, Op: OpAdd, Value: 1}},
	}

	x := dynamo.State{10, 4}
	n, err := plan.Apply("recurring_drought", x)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || x[0] != 5 || x[1] != 5 {
		t.Errorf("applied %d, state %v", n, x)
	}

	n, err = plan.Apply("unknown", x)
	if err != nil || n != 0 {
		t.Errorf("unregistered label: n=%d err=%v", n, err)
	}
}

func TestPlan_Validate(t *testing.T) {
	plan := Plan{"ok": {{Component: 0, Op: OpSet, Value: 1}}}
	if err := plan.Validate(1); err != nil {
		t.Errorf("valid plan rejected: %v", err)
	}

	plan["bad"] = []Perturbation{{Component: 3, Op: OpSet, Value: 1}}
	if err := plan.Validate(2); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestPlan_Labels(t *testing.T) {
	plan := Plan{"b": nil, "a": nil, "c": nil}
	got := plan.Labels()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("Labels() = %v", got)
	}
}

func TestPerturbation_String(t *testing.T) {
	if s := (Perturbation{Component: 0, Op: OpScale, Value: 0.5}).String(); s != "x0 *= 0.5" {
		t.Errorf("String() = %q", s)
	}
}
