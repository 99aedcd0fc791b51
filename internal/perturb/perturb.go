// Package perturb applies instantaneous state changes when an event fires.
package perturb

import (
	"fmt"
	"sort"

	"github.com/san-kum/evsim/internal/dynamo"
)

type Op string

const (
	OpScale Op = "scale"
	OpAdd   Op = "add"
	OpSet   Op = "set"
)

// Perturbation changes one state component in place.
type Perturbation struct {
	Component int     `yaml:"component" json:"component"`
	Op        Op      `yaml:"op" json:"op"`
	Value     float64 `yaml:"value" json:"value"`
}

func (p Perturbation) Validate(dim int) error {
	switch p.Op {
	case OpScale, OpAdd, OpSet:
	default:
		return fmt.Errorf("perturb: unknown op %q", p.Op)
	}
	if p.Component < 0 || p.Component >= dim {
		return fmt.Errorf("%w: component %d outside state of size %d", dynamo.ErrDimensionMismatch, p.Component, dim)
	}
	return nil
}

// Apply edits x in place.
func (p Perturbation) Apply(x dynamo.State) error {
	if err := p.Validate(len(x)); err != nil {
		return err
	}
	switch p.Op {
	case OpScale:
		x[p.Component] *= p.Value
	case OpAdd:
		x[p.Component] += p.Value
	case OpSet:
		x[p.Component] = p.Value
	}
	return nil
}

func (p Perturbation) String() string {
	switch p.Op {
	case OpScale:
		return fmt.Sprintf("x%d *= %g", p.Component, p.Value)
	case OpAdd:
		return fmt.Sprintf("x%d += %g", p.Component, p.Value)
	default:
		return fmt.Sprintf("x%d = %g", p.Component, p.Value)
	}
}

// Plan maps event labels to the perturbations applied when they fire.
// Labels with no entry fire without touching the state.
type Plan map[string][]Perturbation

// Apply runs the perturbations registered for label in order and returns
// how many were applied. It stops at the first failure.
func (p Plan) Apply(label string, x dynamo.State) (int, error) {
	for i, pert := range p[label] {
		if err := pert.Apply(x); err != nil {
			return i, fmt.Errorf("event %q action %d: %w", label, i, err)
		}
	}
	return len(p[label]), nil
}

// Validate checks every perturbation against a state of size dim.
func (p Plan) Validate(dim int) error {
	for _, label := range p.Labels() {
		for i, pert := range p[label] {
			if err := pert.Validate(dim); err != nil {
				return fmt.Errorf("event %q action %d: %w", label, i, err)
			}
		}
	}
	return nil
}

// Labels returns the labels with registered perturbations, sorted.
func (p Plan) Labels() []string {
	labels := make([]string, 0, len(p))
	for label := range p {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
