package analysis

import (
	"fmt"
	"strings"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds a trajectory projected onto two state components.
// Jumps holds the (before, after) pairs of event perturbations.
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
	Jumps          [][2]Point
}

// NewPhasePortrait projects states onto components xIdx and yIdx.
func NewPhasePortrait(states [][]float64, xIdx, yIdx int) (*PhasePortrait2D, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("empty trajectory")
	}
	dim := len(states[0])
	if xIdx < 0 || yIdx < 0 || xIdx >= dim || yIdx >= dim {
		return nil, fmt.Errorf("components %d,%d out of range (state has %d)", xIdx, yIdx, dim)
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, len(states)),
	}
	for _, x := range states {
		if len(x) != dim {
			continue
		}
		portrait.Points = append(portrait.Points, Point{X: x[xIdx], Y: x[yIdx]})
	}
	return portrait, nil
}

// AddJump records an event that moved the state from before to after.
func (p *PhasePortrait2D) AddJump(before, after []float64) {
	if p.XIndex >= len(before) || p.YIndex >= len(before) || p.XIndex >= len(after) || p.YIndex >= len(after) {
		return
	}
	p.Jumps = append(p.Jumps, [2]Point{
		{X: before[p.XIndex], Y: before[p.YIndex]},
		{X: after[p.XIndex], Y: after[p.YIndex]},
	})
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (p *PhasePortrait2D) bounds() bounds {
	b := bounds{p.Points[0].X, p.Points[0].X, p.Points[0].Y, p.Points[0].Y}
	extend := func(q Point) {
		b.minX, b.maxX = min(b.minX, q.X), max(b.maxX, q.X)
		b.minY, b.maxY = min(b.minY, q.Y), max(b.maxY, q.Y)
	}
	for _, q := range p.Points {
		extend(q)
	}
	for _, j := range p.Jumps {
		extend(j[0])
		extend(j[1])
	}

	rangeX, rangeY := b.maxX-b.minX, b.maxY-b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b
}

// ToASCII renders the portrait. Trajectory points are dots, the state
// right after each event is '▲' and the start is 'o'.
func (p *PhasePortrait2D) ToASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	b := p.bounds()
	rangeX, rangeY := b.maxX-b.minX, b.maxY-b.minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(q Point) (int, int, bool) {
		col := int((q.X - b.minX) / rangeX * float64(width-1))
		row := height - 1 - int((q.Y-b.minY)/rangeY*float64(height-1))
		return row, col, row >= 0 && row < height && col >= 0 && col < width
	}

	if b.minX <= 0 && b.maxX >= 0 {
		_, col, _ := cell(Point{X: 0, Y: b.minY})
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if b.minY <= 0 && b.maxY >= 0 {
		row, _, _ := cell(Point{X: b.minX, Y: 0})
		for col := 0; col < width; col++ {
			canvas[row][col] = '─'
		}
	}

	for _, q := range p.Points {
		if row, col, ok := cell(q); ok {
			canvas[row][col] = '•'
		}
	}
	for _, j := range p.Jumps {
		if row, col, ok := cell(j[1]); ok {
			canvas[row][col] = '▲'
		}
	}
	if row, col, ok := cell(p.Points[0]); ok {
		canvas[row][col] = 'o'
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(strings.TrimRight(string(row), " "))
		sb.WriteRune('\n')
	}
	return sb.String()
}
