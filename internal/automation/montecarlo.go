package automation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"

	"github.com/san-kum/evsim/internal/config"
	"github.com/san-kum/evsim/internal/dynamo"
	"github.com/san-kum/evsim/internal/experiment"
)

// MonteCarloConfig jitters the initial state of a scenario.
type MonteCarloConfig struct {
	Trials int
	// Spread is the relative half-width of the uniform jitter applied to
	// each initial component.
	Spread float64
	Seed   int64
	// Bound marks a trial unstable when any final component exceeds it.
	Bound float64
}

// MonteCarloResult holds one trial.
type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	Events     int
	Stable     bool
	Err        error
}

// RunMonteCarlo runs the scenario Trials times from jittered initial states.
// A trial whose state becomes invalid is recorded as unstable rather than
// aborting the batch.
func RunMonteCarlo(ctx context.Context, sc *config.Scenario, reg *experiment.Registry, cfg MonteCarloConfig, logger *slog.Logger) ([]MonteCarloResult, error) {
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("%w: trials=%d", dynamo.ErrInvalidConfiguration, cfg.Trials)
	}
	if cfg.Spread < 0 {
		return nil, fmt.Errorf("%w: spread=%g", dynamo.ErrInvalidConfiguration, cfg.Spread)
	}
	if cfg.Bound <= 0 {
		cfg.Bound = 1e6
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	base := experiment.New(sc, reg, nil)
	if err := base.Setup(); err != nil {
		return nil, err
	}
	x0 := base.InitState()

	rng := rand.New(rand.NewSource(cfg.Seed))
	results := make([]MonteCarloResult, 0, cfg.Trials)

	for trial := 0; trial < cfg.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		init := make([]float64, len(x0))
		for i, v := range x0 {
			init[i] = v * (1 + (rng.Float64()-0.5)*2*cfg.Spread)
		}

		trialSc := sc.Clone()
		trialSc.InitState = init
		exp := experiment.New(trialSc, reg, nil)
		if err := exp.Setup(); err != nil {
			return results, err
		}

		res := MonteCarloResult{TrialID: trial, InitState: init}
		result, err := exp.Run(ctx)
		if result != nil && len(result.States) > 0 {
			res.FinalState = result.States[len(result.States)-1]
			res.Events = len(result.Events)
		}
		switch {
		case err != nil:
			res.Err = err
		default:
			res.Stable = bounded(res.FinalState, cfg.Bound)
		}
		results = append(results, res)

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo progress", "done", trial+1, "trials", cfg.Trials)
		}
	}

	return results, nil
}

func bounded(x dynamo.State, bound float64) bool {
	if !x.IsValid() {
		return false
	}
	for _, v := range x {
		if math.Abs(v) > bound {
			return false
		}
	}
	return true
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
