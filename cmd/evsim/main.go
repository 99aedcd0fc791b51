package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string
	dtMin      float64
	dtMax      float64
	duration   float64
	maxSteps   int
	initState  []float64
	params     map[string]string
	events     []string
	actions    []string

	noSave    bool
	component int
	outFile   string
	sweep     []float64
	theme     string
	xAxis     int
	yAxis     int
	samples   int

	specComponent int
	svgComponent  int

	grid     []string
	metric   string
	maximize bool

	trials int
	spread float64
	seed   int64
)

// main registers the evsim commands and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "evsim",
		Short:        "event-aware adaptive ODE simulation",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".evsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a scenario and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run with event markers",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&component, "component", -1, "state component to plot (-1 for all)")

	eventsCmd := &cobra.Command{
		Use:   "events [run_id]",
		Short: "show the events fired during a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showEvents,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	rmCmd := &cobra.Command{
		Use:   "rm [run_id...]",
		Short: "delete stored runs",
		Args:  cobra.MinimumNArgs(1),
		RunE:  removeRuns,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [model]",
		Short: "run a scenario at several dt_max values in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareStepSizes,
	}
	addScenarioFlags(compareCmd)
	compareCmd.Flags().Float64SliceVar(&sweep, "sweep", []float64{0.04, 0.02, 0.01, 0.005}, "dt_max values to compare")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "step a scenario with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}
	spectrumCmd.Flags().IntVar(&specComponent, "component", 0, "state component to analyze")
	spectrumCmd.Flags().IntVar(&samples, "samples", 4096, "uniform samples after resampling")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render a stored run component as SVG with event markers",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().IntVar(&svgComponent, "component", 0, "state component to draw")
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	searchCmd := &cobra.Command{
		Use:   "search [model]",
		Short: "grid search model parameters against a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  searchParams,
	}
	addScenarioFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&grid, "grid", nil, "parameter values, name=v1,v2,...")
	searchCmd.Flags().StringVar(&metric, "metric", "peak_norm", "metric to optimize")
	searchCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize instead of minimize")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [model]",
		Short: "run a scenario from jittered initial states",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addScenarioFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&spread, "spread", 0.1, "relative jitter of each initial component")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")

	rootCmd.AddCommand(
		runCmd, listCmd, plotCmd, eventsCmd, exportCmd, rmCmd, presetsCmd, compareCmd, liveCmd,
		phaseCmd, spectrumCmd, svgCmd, searchCmd, monteCarloCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// addScenarioFlags registers the flags that build or override a scenario.
func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a named preset for the model")
	cmd.Flags().Float64Var(&dtMin, "dt-min", 0, "smallest step size")
	cmd.Flags().Float64Var(&dtMax, "dt-max", 0, "largest step size")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "stop after this many steps (0 for no limit)")
	cmd.Flags().Float64SliceVar(&initState, "init", nil, "initial state, comma separated")
	cmd.Flags().StringToStringVar(&params, "param", nil, "model parameter, name=value")
	cmd.Flags().StringArrayVar(&events, "event", nil, "schedule an event, label@time or label@time/every")
	cmd.Flags().StringArrayVar(&actions, "action", nil, "perturb on an event, label:component:op:value")
}
