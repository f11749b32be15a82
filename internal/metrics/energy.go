package metrics

import (
	"math"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

// InvariantDrift tracks the largest relative deviation of a conserved
// quantity from its value at the first observed sample.
type InvariantDrift struct {
	name      string
	sys       dynamo.Conserved
	initial   float64
	maxDrift  float64
	samples   int
	undefined bool
}

func NewInvariantDrift(sys dynamo.Conserved) *InvariantDrift {
	return &InvariantDrift{
		name: "invariant_drift",
		sys:  sys,
	}
}

func (e *InvariantDrift) Name() string { return e.name }

func (e *InvariantDrift) Observe(x dynamo.Sample) {
	v := e.sys.Invariant(x.Y)

	if e.samples == 0 {
		e.initial = v
	}
	e.samples++

	if math.IsNaN(v) || math.IsInf(v, 0) {
		e.undefined = true
		return
	}

	drift := math.Abs(v - e.initial)
	if e.initial != 0 {
		drift /= math.Abs(e.initial)
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
}

// Value is NaN once the invariant left its domain, e.g. after a population
// went extinct or the solution diverged.
func (e *InvariantDrift) Value() float64 {
	if e.undefined {
		return math.NaN()
	}
	return e.maxDrift
}

func (e *InvariantDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
	e.undefined = false
}
