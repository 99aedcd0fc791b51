package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/evsim/internal/config"
	"github.com/san-kum/evsim/internal/experiment"
	"github.com/san-kum/evsim/internal/export"
	"github.com/san-kum/evsim/internal/storage"
	"github.com/san-kum/evsim/internal/viz"
)

func setup(cmd *cobra.Command, args []string) (*experiment.Experiment, error) {
	logger, err := newLogger(logLevel)
	if err != nil {
		return nil, err
	}
	sc, err := resolveScenario(cmd, args)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(sc, experiment.NewRegistry(), logger)
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sc := exp.Scenario()
	fmt.Printf("running %s simulation...\n", sc.Model)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	if err := result.Exhausted(); err != nil {
		exp.Logger().Warn("run truncated", "error", err)
	}

	title := "result"
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(sc, result)
		if err != nil {
			return err
		}
		title = runID
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Println(viz.RenderSummary(viz.SummaryFromResult(title, sc.Model, result)))
	if len(result.Events) > 0 {
		fmt.Println(viz.RenderEvents(viz.EventRowsFromResult(result)))
	}
	if b, ok := exp.FirstBreach(); ok {
		cause := "before any event"
		if b.After != "" {
			cause = fmt.Sprintf("%.4g after %q", b.Since, b.After)
		}
		fmt.Printf("left stability bound at t=%.4g (%s)\n", b.Time, cause)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT_MIN\tDT_MAX\tSTEPS\tEVENTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%g\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.DtMin,
			run.DtMax,
			run.Steps,
			run.Events,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(traj.States) == 0 {
		return fmt.Errorf("no data to plot")
	}
	fired, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}

	eventTimes := make([]float64, len(fired))
	for i, ev := range fired {
		eventTimes[i] = ev.Time
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)

	dim := len(traj.States[0])
	indices := []int{component}
	if component < 0 {
		indices = indices[:0]
		for i := 0; i < dim; i++ {
			indices = append(indices, i)
		}
	} else if component >= dim {
		return fmt.Errorf("component %d out of range (state has %d)", component, dim)
	}

	for _, idx := range indices {
		fmt.Println(viz.Plot(traj.Times, viz.Component(traj.States, idx), eventTimes, viz.PlotOptions{
			Width:   80,
			Height:  10,
			Caption: viz.Caption(meta.Model, idx),
		}))
		fmt.Println()
	}

	fmt.Println(viz.Plot(traj.Times, traj.Dts, eventTimes, viz.PlotOptions{
		Width:   80,
		Height:  6,
		Caption: "dt vs time",
	}))
	return nil
}

func showEvents(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	fired, err := st.LoadEvents(args[0])
	if err != nil {
		return err
	}

	rows := make([]viz.EventRow, len(fired))
	for i, ev := range fired {
		rows[i] = viz.EventRow{Label: ev.Label, Time: ev.Time, Step: ev.Step, Before: ev.Before, After: ev.After}
	}
	fmt.Println(viz.RenderEvents(rows))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	if outFile == "" {
		return st.Export(args[0], os.Stdout)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := st.Export(args[0], f); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], outFile)
	return nil
}

func removeRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	for _, id := range args {
		if err := st.Delete(id); err != nil {
			return err
		}
		fmt.Println("deleted", id)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := experiment.NewRegistry().ListModels()
	if len(args) > 0 {
		models = args[:1]
	}

	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Printf("no presets for model: %s\n", model)
			continue
		}
		fmt.Printf("presets for %s:\n", model)
		for _, p := range presets {
			sc := config.GetPreset(model, p)
			fmt.Printf("  %-10s events: %v\n", p, sc.EventLabels())
		}
	}
	return nil
}

func compareStepSizes(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := exp.Sweep(ctx, sweep)
	if err != nil {
		return err
	}

	fmt.Printf("compared %d step sizes in %v\n\n", len(sweep), time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT_MAX\tSTEPS\tACCEPTED\tREJECTED\tLANDINGS\tEVENTS\tT_END\tFINAL STATE")
	for i, res := range results {
		last := len(res.States) - 1
		fmt.Fprintf(w, "%g\t%d\t%d\t%d\t%d\t%d\t%.6g\t%v\n",
			sweep[i],
			res.Steps,
			res.Stats.Accepted,
			res.Stats.Rejected,
			res.Stats.Landings,
			len(res.Events),
			res.Times[last],
			res.States[last],
		)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd, args)
	if err != nil {
		return err
	}

	viz.SetTheme(theme)
	sc := exp.Scenario()
	live, err := viz.NewLive(sc.Model, exp.Model(), exp.InitState(), sc.ToSimConfig())
	if err != nil {
		return err
	}
	return viz.RunLive(live)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(traj.States) == 0 || svgComponent < 0 || svgComponent >= len(traj.States[0]) {
		return fmt.Errorf("component %d not in run %s", svgComponent, runID)
	}
	fired, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}

	markers := make([]export.Marker, len(fired))
	for i, ev := range fired {
		markers[i] = export.Marker{Time: ev.Time, Label: ev.Label}
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return export.TimeSeriesSVG(out, traj.Times, viz.Component(traj.States, svgComponent), markers, export.SVGOptions{
		StrokeColor: string(viz.CurrentTheme.Primary),
		EventColor:  string(viz.CurrentTheme.Accent),
	})
}
