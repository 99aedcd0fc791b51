package sim

import (
	"context"
	"sync"

	"github.com/san-kum/evsim/internal/dynamo"
)

// Ensemble runs independent simulations in parallel, one Simulator per
// goroutine.
type Ensemble struct {
	build func() *Simulator
}

// NewEnsemble takes a constructor so that every run owns its metrics and
// observers.
func NewEnsemble(build func() *Simulator) *Ensemble {
	return &Ensemble{build: build}
}

// Run executes one simulation per config and returns results in the same
// order. The first error wins.
func (e *Ensemble) Run(ctx context.Context, x0 dynamo.State, cfgs []Config) ([]*Result, error) {
	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	var wg sync.WaitGroup
	for i := range cfgs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = e.build().Run(ctx, x0, cfgs[idx])
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
