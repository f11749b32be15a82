package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return floats.Norm(s, 2)
}

// Sub returns s-other. Both vectors must have the same length.
func (s State) Sub(other State) State {
	result := make(State, len(s))
	floats.SubTo(result, s, other)
	return result
}

// Field is the right-hand side of dy/dt = f(t, y). A Field must be pure:
// integrators call it several times per step with intermediate states.
type Field func(t float64, y State) State

// System is a named vector field that knows its state dimension.
type System interface {
	StateDim() int
	Field() Field
}

// Conserved is implemented by systems with a first integral that stays
// constant along exact solutions.
type Conserved interface {
	Invariant(y State) float64
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Labeled interface {
	StateLabels() []string
}

// Labels returns human readable component names for sys, falling back to
// x0, x1, ... when the system does not name them.
func Labels(sys System) []string {
	if l, ok := sys.(Labeled); ok {
		return l.StateLabels()
	}
	return DefaultLabels(sys.StateDim())
}

func DefaultLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("x%d", i)
	}
	return labels
}

type Sample struct {
	T float64
	Y State
}

// Trajectory is an ordered sequence of samples, the initial condition first.
type Trajectory []Sample

func (tr Trajectory) Times() []float64 {
	times := make([]float64, len(tr))
	for i, s := range tr {
		times[i] = s.T
	}
	return times
}

// Component extracts the i-th state component across all samples.
func (tr Trajectory) Component(i int) []float64 {
	out := make([]float64, len(tr))
	for j, s := range tr {
		if i < len(s.Y) {
			out[j] = s.Y[i]
		}
	}
	return out
}

func (tr Trajectory) Dim() int {
	if len(tr) == 0 {
		return 0
	}
	return len(tr[0].Y)
}

func (tr Trajectory) Final() Sample {
	if len(tr) == 0 {
		return Sample{}
	}
	return tr[len(tr)-1]
}

// FirstInvalid returns the index of the first sample holding a NaN or Inf
// component, or -1 if every sample is finite.
func (tr Trajectory) FirstInvalid() int {
	for i, s := range tr {
		if !s.Y.IsValid() {
			return i
		}
	}
	return -1
}

func (tr Trajectory) IsValid() bool {
	return tr.FirstInvalid() < 0
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}
