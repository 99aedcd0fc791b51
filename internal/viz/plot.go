package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

const eventMarker = '▲'

type PlotOptions struct {
	Width   int
	Height  int
	Caption string
}

func (o PlotOptions) withDefaults() PlotOptions {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.Height <= 0 {
		o.Height = 10
	}
	return o
}

// Component extracts one state component from a trajectory. Rows that are
// too short yield zero.
func Component(states [][]float64, idx int) []float64 {
	data := make([]float64, len(states))
	for i, x := range states {
		if idx < len(x) {
			data[i] = x[idx]
		}
	}
	return data
}

// Plot draws data sampled at times and, when eventTimes is non-empty, adds
// a row under the x axis with a marker at each event time.
func Plot(times, data, eventTimes []float64, opts PlotOptions) string {
	opts = opts.withDefaults()
	if len(data) == 0 {
		return ""
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(opts.Caption),
	)
	if len(eventTimes) == 0 || len(times) < 2 {
		return graph
	}

	lines := strings.Split(graph, "\n")
	offset := axisOffset(lines)
	if offset < 0 {
		return graph
	}
	markers := markerRow(times[0], times[len(times)-1], eventTimes, opts.Width)

	row := strings.Repeat(" ", offset+1) + markers
	at := len(lines)
	if opts.Caption != "" {
		// Caption stays last.
		at--
	}
	out := append([]string{}, lines[:at]...)
	out = append(out, row)
	out = append(out, lines[at:]...)
	return strings.Join(out, "\n")
}

// axisOffset returns the rune column of the y axis in the first plot line.
func axisOffset(lines []string) int {
	for _, line := range lines {
		col := 0
		for _, r := range line {
			if r == '┤' || r == '┼' {
				return col
			}
			col++
		}
	}
	return -1
}

// markerRow places a marker for each event time on a width-column scale
// spanning [t0, t1].
func markerRow(t0, t1 float64, eventTimes []float64, width int) string {
	row := []rune(strings.Repeat(" ", width))
	span := t1 - t0
	for _, te := range eventTimes {
		if te < t0 || te > t1 {
			continue
		}
		col := 0
		if span > 0 {
			col = int((te - t0) / span * float64(width-1))
		}
		row[col] = eventMarker
	}
	return strings.TrimRight(string(row), " ")
}

// PlotMany overlays several components on one graph.
func PlotMany(series [][]float64, opts PlotOptions) string {
	opts = opts.withDefaults()
	if len(series) == 0 {
		return ""
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(opts.Caption),
	)
}

// Caption names component idx for model.
func Caption(model string, idx int) string {
	names := map[string][]string{
		"lotka":     {"prey", "predator"},
		"ramp":      {"x"},
		"pendulum":  {"theta", "omega"},
		"vanderpol": {"x", "dx/dt"},
		"lorenz":    {"x", "y", "z"},
	}
	if n, ok := names[model]; ok && idx < len(n) {
		return fmt.Sprintf("%s vs time", n[idx])
	}
	return fmt.Sprintf("x%d vs time", idx)
}
