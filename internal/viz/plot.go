package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Green,
	asciigraph.Red,
	asciigraph.Blue,
	asciigraph.Yellow,
}

// PlotComponent draws one state component against sample index.
func PlotComponent(traj dynamo.Trajectory, index, width, height int, caption string) string {
	if index < 0 || index >= traj.Dim() {
		return ""
	}
	return asciigraph.Plot(plottable(traj.Component(index)),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotAll overlays every component on one chart, colored in component
// order.
func PlotAll(traj dynamo.Trajectory, width, height int, caption string) string {
	dim := traj.Dim()
	if dim == 0 || len(traj) == 0 {
		return ""
	}

	series := make([][]float64, dim)
	colors := make([]asciigraph.AnsiColor, dim)
	for i := range series {
		series[i] = plottable(traj.Component(i))
		colors[i] = seriesColors[i%len(seriesColors)]
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	)
}

// plottable replaces infinities with NaN, which asciigraph leaves as gaps.
func plottable(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}
