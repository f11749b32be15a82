package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

type Point struct {
	X, Y float64
}

// Portrait is the projection of a trajectory onto two state components.
type Portrait struct {
	XIndex, YIndex int
	XLabel, YLabel string
	Points         []Point
}

// NewPortrait projects traj onto components xIdx and yIdx. Samples with a
// non-finite coordinate are left out.
func NewPortrait(traj dynamo.Trajectory, labels []string, xIdx, yIdx int) (*Portrait, error) {
	dim := traj.Dim()
	if xIdx < 0 || yIdx < 0 || xIdx >= dim || yIdx >= dim {
		return nil, fmt.Errorf("%w: components %d,%d out of range for dimension %d",
			dynamo.ErrInvalidArgument, xIdx, yIdx, dim)
	}
	if len(labels) != dim {
		labels = dynamo.DefaultLabels(dim)
	}

	p := &Portrait{
		XIndex: xIdx,
		YIndex: yIdx,
		XLabel: labels[xIdx],
		YLabel: labels[yIdx],
		Points: make([]Point, 0, len(traj)),
	}
	for _, s := range traj {
		x, y := s.Y[xIdx], s.Y[yIdx]
		if !finite(x) || !finite(y) {
			continue
		}
		p.Points = append(p.Points, Point{X: x, Y: y})
	}
	return p, nil
}

// Bounds returns the extent of the portrait with 10% padding on each side.
func (p *Portrait) Bounds() (minX, maxX, minY, maxY float64) {
	if len(p.Points) == 0 {
		return 0, 1, 0, 1
	}
	minX, maxX = p.Points[0].X, p.Points[0].X
	minY, maxY = p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX = math.Min(minX, pt.X)
		maxX = math.Max(maxX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return minX - rangeX*0.1, maxX + rangeX*0.1, minY - rangeY*0.1, maxY + rangeY*0.1
}

// ASCII renders the portrait on a width x height character grid, the first
// sample marked with 'o'.
func (p *Portrait) ASCII(width, height int) string {
	if len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX, minY, maxY := p.Bounds()
	rangeX := maxX - minX
	rangeY := maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(pt Point) (int, int) {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		return row, col
	}

	for _, pt := range p.Points {
		row, col := cell(pt)
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}
	if row, col := cell(p.Points[0]); row >= 0 && row < height && col >= 0 && col < width {
		canvas[row][col] = 'o'
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	fmt.Fprintf(&sb, "x: %s [%.2f, %.2f]  y: %s [%.2f, %.2f]\n",
		p.XLabel, minX, maxX, p.YLabel, minY, maxY)
	return sb.String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
