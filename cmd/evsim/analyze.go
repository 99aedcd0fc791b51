package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/evsim/internal/analysis"
	"github.com/san-kum/evsim/internal/storage"
)

func phasePlot(cmd *cobra.Command, args []string) error {
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
	fired, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}

	portrait, err := analysis.NewPhasePortrait(traj.States, xAxis, yAxis)
	if err != nil {
		return err
	}
	for _, ev := range fired {
		portrait.AddJump(ev.Before, ev.After)
	}

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Model)
	fmt.Printf("x%d vs x%d, %d points, %d events (▲ marks the state after each event)\n\n",
		xAxis, yAxis, len(portrait.Points), len(portrait.Jumps))
	fmt.Print(portrait.ToASCII(80, 24))
	return nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
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
	if len(traj.States) == 0 || specComponent < 0 || specComponent >= len(traj.States[0]) {
		return fmt.Errorf("component %d not in run %s", specComponent, runID)
	}

	data := make([]float64, len(traj.States))
	for i, x := range traj.States {
		data[i] = x[specComponent]
	}

	spec, err := analysis.PowerSpectrum(traj.Times, data, samples)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s)\n\n", meta.ID, meta.Model)

	plotData := spec.Amplitude
	if len(plotData) > 80 {
		plotData = plotData[:80]
	}
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("amplitude spectrum (x%d)", specComponent)),
	))
	fmt.Println()

	fmt.Println("peaks:")
	for _, p := range spec.Peaks(5) {
		fmt.Printf("  f=%.4f  period=%.4f  amplitude=%.4g\n", p.Freq, p.Period, p.Amplitude)
	}
	return nil
}
