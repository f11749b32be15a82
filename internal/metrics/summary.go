package metrics

import (
	"math"

	"github.com/san-kum/lotkasim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type reduction int

const (
	reducePeak reduction = iota
	reduceTrough
	reduceMean
)

// Component summarizes one state component over the finite samples seen.
type Component struct {
	name   string
	index  int
	reduce reduction
	values []float64
}

func NewPeak(label string, index int) *Component {
	return &Component{name: "peak_" + label, index: index, reduce: reducePeak}
}

func NewTrough(label string, index int) *Component {
	return &Component{name: "trough_" + label, index: index, reduce: reduceTrough}
}

func NewMean(label string, index int) *Component {
	return &Component{name: "mean_" + label, index: index, reduce: reduceMean}
}

func (c *Component) Name() string { return c.name }

func (c *Component) Observe(x dynamo.Sample) {
	if c.index >= len(x.Y) {
		return
	}
	v := x.Y[c.index]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	c.values = append(c.values, v)
}

func (c *Component) Value() float64 {
	if len(c.values) == 0 {
		return math.NaN()
	}
	switch c.reduce {
	case reducePeak:
		return floats.Max(c.values)
	case reduceTrough:
		return floats.Min(c.values)
	default:
		return stat.Mean(c.values, nil)
	}
}

func (c *Component) Reset() {
	c.values = c.values[:0]
}

// Defaults returns the standard metric set for sys: stability, invariant
// drift when sys is conservative, and peak/trough/mean per component.
func Defaults(sys dynamo.System) []dynamo.Metric {
	ms := []dynamo.Metric{NewStability(1e6)}
	if c, ok := sys.(dynamo.Conserved); ok {
		ms = append(ms, NewInvariantDrift(c))
	}
	for i, label := range dynamo.Labels(sys) {
		ms = append(ms, NewPeak(label, i), NewTrough(label, i), NewMean(label, i))
	}
	return ms
}
