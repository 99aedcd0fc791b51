package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/evsim/internal/config"
	"github.com/san-kum/evsim/internal/experiment"
)

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Maximize flips the objective.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Search runs base once per grid point with the point's model parameters
// and returns the best trial by metricName along with every trial. Failed
// runs are recorded and skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Scenario,
	reg *experiment.Registry,
	metricName string,
) (*Trial, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, nil, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	var trials []Trial
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), base, reg, metricName, &trials); err != nil {
		return nil, trials, err
	}

	var best *Trial
	for i := range trials {
		tr := &trials[i]
		if tr.Err != nil || math.IsNaN(tr.Value) {
			continue
		}
		if best == nil || g.better(tr.Value, best.Value) {
			best = tr
		}
	}
	if best == nil {
		return nil, trials, errors.New("no trial succeeded")
	}
	return best, trials, nil
}

func (g *GridSearch) better(v, than float64) bool {
	if g.maximize {
		return v > than
	}
	return v < than
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Scenario,
	reg *experiment.Registry,
	metricName string,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		*trials = append(*trials, g.evaluate(ctx, current, base, reg, metricName))
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, reg, metricName, trials); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) evaluate(
	ctx context.Context,
	params map[string]float64,
	base *config.Scenario,
	reg *experiment.Registry,
	metricName string,
) Trial {
	trial := Trial{Params: params, Value: math.NaN()}

	sc := base.Clone()
	if sc.Params == nil {
		sc.Params = make(map[string]float64)
	}
	for k, v := range params {
		sc.Params[k] = v
	}

	exp := experiment.New(sc, reg, nil)
	if err := exp.Setup(); err != nil {
		trial.Err = err
		return trial
	}
	result, err := exp.Run(ctx)
	if err != nil {
		trial.Err = err
		return trial
	}

	val, ok := result.Metrics[metricName]
	if !ok {
		trial.Err = fmt.Errorf("metric %q not recorded", metricName)
		return trial
	}
	trial.Value = val
	return trial
}
