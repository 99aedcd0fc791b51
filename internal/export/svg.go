package export

import (
	"fmt"
	"html"
	"io"
	"strings"
)

type SVGOptions struct {
	Width       int
	Height      int
	StrokeColor string
	EventColor  string
}

func (o SVGOptions) withDefaults() SVGOptions {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 300
	}
	if o.StrokeColor == "" {
		o.StrokeColor = "#00ffff"
	}
	if o.EventColor == "" {
		o.EventColor = "#ff00ff"
	}
	return o
}

// Marker is a labelled vertical line at an event time.
type Marker struct {
	Time  float64
	Label string
}

type frame struct {
	minX, maxX, minY, maxY float64
	width, height          float64
}

func newFrame(xs, ys []float64, width, height int) frame {
	f := frame{minX: xs[0], maxX: xs[0], minY: ys[0], maxY: ys[0], width: float64(width), height: float64(height)}
	for _, x := range xs {
		f.minX, f.maxX = min(f.minX, x), max(f.maxX, x)
	}
	for _, y := range ys {
		f.minY, f.maxY = min(f.minY, y), max(f.maxY, y)
	}

	rangeY := f.maxY - f.minY
	if rangeY == 0 {
		rangeY = 1
	}
	f.minY -= rangeY * 0.1
	f.maxY += rangeY * 0.1
	if f.maxX == f.minX {
		f.maxX = f.minX + 1
	}
	return f
}

func (f frame) x(v float64) float64 { return (v - f.minX) / (f.maxX - f.minX) * f.width }
func (f frame) y(v float64) float64 { return f.height - (v-f.minY)/(f.maxY-f.minY)*f.height }

// TimeSeriesSVG writes data against times as an SVG path, with a dashed
// line for each marker inside the time range.
func TimeSeriesSVG(w io.Writer, times, data []float64, markers []Marker, opts SVGOptions) error {
	if len(times) < 2 || len(times) != len(data) {
		return fmt.Errorf("need at least two samples with matching times, got %d times and %d values", len(times), len(data))
	}
	opts = opts.withDefaults()
	f := newFrame(times, data, opts.Width, opts.Height)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Width, opts.Height, opts.Width, opts.Height)

	for _, m := range markers {
		if m.Time < f.minX || m.Time > f.maxX {
			continue
		}
		x := f.x(m.Time)
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="0" x2="%.1f" y2="%d" stroke="%s" stroke-dasharray="4 3"/>
<text x="%.1f" y="12" fill="%s" font-size="10" font-family="monospace">%s</text>
`, x, x, opts.Height, opts.EventColor, x+2, opts.EventColor, html.EscapeString(m.Label))
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, opts.StrokeColor)
	for i := range times {
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", f.x(times[i]), f.y(data[i]))
	}
	sb.WriteString(`"/>
</svg>
`)

	_, err := io.WriteString(w, sb.String())
	return err
}
