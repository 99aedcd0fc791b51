package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/evsim/internal/dynamo"
	"github.com/san-kum/evsim/internal/integrators"
	"github.com/san-kum/evsim/internal/perturb"
	"github.com/san-kum/evsim/internal/sim"
)

const (
	historyCapacity = 600
	logCapacity     = 8
	maxStepsPerTick = 1024
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Live steps a run frame by frame and shows the trajectory, the step size
// and events as they fire.
type Live struct {
	name     string
	stepper  *integrators.EventStepper[dynamo.State]
	actions  perturb.Plan
	duration float64

	running      bool
	done         bool
	err          error
	stepsPerTick int
	component    int

	times   []float64
	history [][]float64
	dts     []float64
	log     []string
	fired   int
}

// NewLive builds a live view for dyn using cfg's step bounds, events and
// actions. A zero Duration runs until quit.
func NewLive(name string, dyn dynamo.System, x0 dynamo.State, cfg sim.Config) (*Live, error) {
	if len(x0) != dyn.StateDim() {
		return nil, fmt.Errorf("%w: initial state has %d components, model wants %d", dynamo.ErrDimensionMismatch, len(x0), dyn.StateDim())
	}
	if err := cfg.Actions.Validate(len(x0)); err != nil {
		return nil, err
	}
	stepper, err := sim.New(dyn, nil).NewStepper(x0, cfg)
	if err != nil {
		return nil, err
	}
	l := &Live{
		name:         name,
		stepper:      stepper,
		actions:      cfg.Actions,
		duration:     cfg.Duration,
		running:      true,
		stepsPerTick: 16,
	}
	l.record()
	return l, nil
}

func (l *Live) Init() tea.Cmd {
	return tick()
}

func (l *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return l, tea.Quit
		case " ":
			l.running = !l.running
		case "+", "=":
			l.stepsPerTick = min(l.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			l.stepsPerTick = max(l.stepsPerTick/2, 1)
		case "tab":
			l.component = (l.component + 1) % len(l.stepper.State())
		case "t":
			SetTheme(nextTheme())
		}
	case TickMsg:
		if l.running && !l.done {
			l.advance(l.stepsPerTick)
		}
		return l, tick()
	}
	return l, nil
}

// advance performs up to n Step calls, applying actions for fired events.
func (l *Live) advance(n int) {
	for i := 0; i < n && !l.done; i++ {
		if l.duration > 0 && l.stepper.Time() >= l.duration && !l.stepper.Draining() {
			l.done = true
			return
		}

		l.stepper.Step()
		x := l.stepper.State()

		if l.stepper.IsEvent() {
			label := l.stepper.Event()
			if _, err := l.actions.Apply(label, x); err != nil {
				l.fail(err)
				return
			}
			l.fired++
			l.pushLog(fmt.Sprintf("t=%-10.6g %s", l.stepper.Time(), label))
		}

		if !x.IsValid() {
			l.fail(&dynamo.SimulationError{
				Step:    l.stepper.Steps(),
				Time:    l.stepper.Time(),
				State:   x.Clone(),
				Wrapped: dynamo.ErrInvalidState,
			})
			return
		}
		l.record()
	}
}

func (l *Live) fail(err error) {
	l.err = err
	l.done = true
}

func (l *Live) record() {
	l.times = append(l.times, l.stepper.Time())
	l.history = append(l.history, l.stepper.State().Clone())
	l.dts = append(l.dts, l.stepper.Dt())
	if len(l.times) > historyCapacity {
		l.times = l.times[1:]
		l.history = l.history[1:]
		l.dts = l.dts[1:]
	}
}

func (l *Live) pushLog(line string) {
	l.log = append(l.log, line)
	if len(l.log) > logCapacity {
		l.log = l.log[1:]
	}
}

// Err returns the error that stopped the run, if any.
func (l *Live) Err() error { return l.err }

func (l *Live) Time() float64 { return l.stepper.Time() }

func (l *Live) Fired() int { return l.fired }

func (l *Live) Done() bool { return l.done }

func (l *Live) View() string {
	p := styles()

	status := p.ok.Render("RUNNING")
	switch {
	case l.err != nil:
		status = p.bad.Render("FAILED: " + l.err.Error())
	case l.done:
		status = p.ok.Render("DONE")
	case !l.running:
		status = p.warn.Render("PAUSED")
	}

	var left strings.Builder
	left.WriteString(p.header.Render(strings.ToUpper(l.name)) + "\n")
	left.WriteString(status + "\n\n")

	data := Component(l.history, l.component)
	if len(data) > 1 {
		left.WriteString(asciigraph.Plot(data,
			asciigraph.Height(12),
			asciigraph.Width(60),
			asciigraph.Caption(Caption(l.name, l.component)),
		))
	}

	var right strings.Builder
	row := func(label, value string) {
		right.WriteString(p.label.Render(label) + p.value.Render(value) + "\n")
	}
	row("t", fmt.Sprintf("%.6g", l.stepper.Time()))
	row("dt", fmt.Sprintf("%.3g", l.stepper.Dt()))
	row("steps", fmt.Sprintf("%d", l.stepper.Steps()))
	row("steps/frame", fmt.Sprintf("%d", l.stepsPerTick))
	row("fired", fmt.Sprintf("%d", l.fired))
	if l.duration > 0 {
		right.WriteString(ProgressBar(l.stepper.Time()/l.duration, 24) + "\n")
	}
	right.WriteString("\n" + p.subtle.Render("dt history") + "\n")
	right.WriteString(Sparkline(l.dts, 24) + "\n")

	right.WriteString("\n" + p.subtle.Render("next events") + "\n")
	upcoming := l.stepper.Upcoming()
	if len(upcoming) == 0 {
		right.WriteString(p.subtle.Render("  (none)") + "\n")
	}
	for i, ev := range upcoming {
		if i == 3 {
			break
		}
		right.WriteString(p.event.Render(fmt.Sprintf("  t=%-8.4g %s", ev.Time, ev.Label)) + "\n")
	}

	right.WriteString("\n" + p.subtle.Render("fired") + "\n")
	for _, line := range l.log {
		right.WriteString("  " + line + "\n")
	}

	right.WriteString("\n" + p.subtle.Render("SP:Pause +/-:Speed Tab:Component T:Theme Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(left.String()),
		p.panel.Render(right.String()),
	)
}

// RunLive starts the Bubble Tea program and blocks until it exits.
func RunLive(l *Live) error {
	if _, err := tea.NewProgram(l, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return l.Err()
}
