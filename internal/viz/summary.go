package viz

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/evsim/internal/integrators"
	"github.com/san-kum/evsim/internal/sim"
)

// Summary is what RenderSummary shows for one run.
type Summary struct {
	Title     string
	Model     string
	Time      float64
	Steps     int
	Events    int
	Truncated bool
	Stats     integrators.Stats
	Metrics   map[string]float64
}

func SummaryFromResult(title, model string, r *sim.Result) Summary {
	t := 0.0
	if len(r.Times) > 0 {
		t = r.Times[len(r.Times)-1]
	}
	return Summary{
		Title:     title,
		Model:     model,
		Time:      t,
		Steps:     r.Steps,
		Events:    len(r.Events),
		Truncated: r.Truncated,
		Stats:     r.Stats,
		Metrics:   r.Metrics,
	}
}

func RenderSummary(s Summary) string {
	p := styles()
	var b strings.Builder

	b.WriteString(p.header.Render(s.Title) + "\n")
	line := func(label, value string) {
		b.WriteString(p.label.Render(label) + p.value.Render(value) + "\n")
	}

	line("model", s.Model)
	line("t_end", fmt.Sprintf("%.6g", s.Time))
	line("steps", strconv.Itoa(s.Steps))
	line("events", strconv.Itoa(s.Events))
	line("accepted", strconv.Itoa(s.Stats.Accepted))
	line("rejected", strconv.Itoa(s.Stats.Rejected))
	line("landings", strconv.Itoa(s.Stats.Landings))
	line("evaluations", strconv.Itoa(s.Stats.Evaluations))
	if s.Truncated {
		b.WriteString(p.warn.Render("stopped at max_steps before duration") + "\n")
	}

	if len(s.Metrics) > 0 {
		b.WriteString("\n")
		names := make([]string, 0, len(s.Metrics))
		for name := range s.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			line(name, fmt.Sprintf("%.6g", s.Metrics[name]))
		}
	}

	return p.panel.Render(strings.TrimRight(b.String(), "\n"))
}

// EventRow is one fired event as shown by RenderEvents.
type EventRow struct {
	Label  string
	Time   float64
	Step   int
	Before []float64
	After  []float64
}

func EventRowsFromResult(r *sim.Result) []EventRow {
	rows := make([]EventRow, len(r.Events))
	for i, ev := range r.Events {
		rows[i] = EventRow{Label: ev.Label, Time: ev.Time, Step: ev.Step, Before: ev.Before, After: ev.After}
	}
	return rows
}

func RenderEvents(rows []EventRow) string {
	p := styles()
	if len(rows) == 0 {
		return p.subtle.Render("no events fired")
	}

	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{
			strconv.Itoa(i + 1),
			r.Label,
			fmt.Sprintf("%.6g", r.Time),
			strconv.Itoa(r.Step),
			formatVector(r.Before),
			formatVector(r.After),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.subtle).
		Headers("#", "label", "t", "step", "before", "after").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return p.value.Padding(0, 1)
			case col == 1:
				return p.event.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		})
	return t.String()
}

func formatVector(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = fmt.Sprintf("%.4g", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
