package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/evsim/internal/automation"
	"github.com/san-kum/evsim/internal/experiment"
	"github.com/san-kum/evsim/internal/optim"
)

// parseGrid reads name=v1,v2,... entries.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("grid %q: want name=v1,v2,...", spec)
		}
		var vals []float64
		for _, raw := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %q: %w", spec, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func searchParams(cmd *cobra.Command, args []string) error {
	if len(grid) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}
	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}
	sc, err := resolveScenario(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := optim.NewGridSearch(names, ranges)
	if maximize {
		g.Maximize()
	}
	best, trials, err := g.Search(ctx, sc, experiment.NewRegistry(), metric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PARAMS\t%s\n", strings.ToUpper(metric))
	for _, tr := range trials {
		val := strconv.FormatFloat(tr.Value, 'g', 6, 64)
		if tr.Err != nil {
			val = "error: " + tr.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", formatParams(tr.Params), val)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest: %s (%s=%g)\n", formatParams(best.Params), metric, best.Value)
	return nil
}

func formatParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, params[k])
	}
	return strings.Join(parts, " ")
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}
	sc, err := resolveScenario(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, sc, experiment.NewRegistry(), automation.MonteCarloConfig{
		Trials: trials,
		Spread: spread,
		Seed:   seed,
	}, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tINIT\tFINAL\tEVENTS\tSTABLE")
	for _, r := range results {
		stable := strconv.FormatBool(r.Stable)
		if r.Err != nil {
			stable = "error: " + r.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%.4g\t%.4g\t%d\t%s\n", r.TrialID, r.InitState, r.FinalState, r.Events, stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stableCount, unstableCount := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d  unstable: %d\n", stableCount, unstableCount)
	return nil
}
