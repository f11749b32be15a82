// Package export renders solved trajectories as standalone SVG documents.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/lotkasim/internal/analysis"
	"github.com/san-kum/lotkasim/internal/dynamo"
)

var ErrTooFewPoints = errors.New("export: need at least two finite points")

// Palette colors the series of a time plot in component order.
var Palette = []string{"#00ff9c", "#ff5f87", "#5fafff", "#ffd75f"}

const background = "#0a0a0a"

// PhaseSVG draws a phase portrait as a single path.
func PhaseSVG(w io.Writer, p *analysis.Portrait, width, height int, stroke string) error {
	if p == nil || len(p.Points) < 2 {
		return ErrTooFewPoints
	}

	minX, maxX, minY, maxY := p.Bounds()
	sx := newScale(minX, maxX, float64(width), false)
	sy := newScale(minY, maxY, float64(height), true)

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)
	for i, pt := range p.Points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&sb, "%s%.1f,%.1f ", cmd, sx.apply(pt.X), sy.apply(pt.Y))
	}
	sb.WriteString("\"/>\n")

	start := p.Points[0]
	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`+"\n",
		sx.apply(start.X), sy.apply(start.Y), stroke)
	fmt.Fprintf(&sb, `<text x="8" y="%d" fill="#aaaaaa" font-family="monospace" font-size="12">%s vs %s</text>`+"\n",
		height-8, p.YLabel, p.XLabel)
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// TimeSeriesSVG draws every component against time on shared axes. A
// non-finite sample breaks the line of its component.
func TimeSeriesSVG(w io.Writer, traj dynamo.Trajectory, labels []string, width, height int) error {
	if len(traj) < 2 {
		return ErrTooFewPoints
	}
	dim := traj.Dim()
	if len(labels) != dim {
		labels = dynamo.DefaultLabels(dim)
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range traj {
		for _, v := range s.Y {
			if finite(v) {
				minY = math.Min(minY, v)
				maxY = math.Max(maxY, v)
			}
		}
	}
	if math.IsInf(minY, 1) {
		return ErrTooFewPoints
	}

	first, last := traj[0].T, traj[len(traj)-1].T
	sx := newScale(math.Min(first, last), math.Max(first, last), float64(width), false)
	sy := newScale(minY, maxY, float64(height), true)

	var sb strings.Builder
	header(&sb, width, height)

	for c := 0; c < dim; c++ {
		color := Palette[c%len(Palette)]
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, color)
		pen := false
		for _, s := range traj {
			v := s.Y[c]
			if !finite(v) {
				pen = false
				continue
			}
			cmd := "L"
			if !pen {
				cmd = "M"
				pen = true
			}
			fmt.Fprintf(&sb, "%s%.1f,%.1f ", cmd, sx.apply(s.T), sy.apply(v))
		}
		sb.WriteString("\"/>\n")
		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>`+"\n",
			16*(c+1), color, labels[c])
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// scale maps data coordinates onto [0, size] pixels.
type scale struct {
	min, span, size float64
	flip            bool
}

func newScale(lo, hi, size float64, flip bool) scale {
	span := hi - lo
	if span == 0 {
		span = 1
		lo -= 0.5
	}
	return scale{min: lo, span: span, size: size, flip: flip}
}

func (s scale) apply(v float64) float64 {
	p := (v - s.min) / s.span * s.size
	if s.flip {
		return s.size - p
	}
	return p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
