package integrators

import (
	"github.com/san-kum/lotkasim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Stepper advances y at time t by one step of size h.
type Stepper func(f dynamo.Field, t float64, y dynamo.State, h float64) (dynamo.State, error)

// RK4 is the classical four-stage Runge-Kutta scheme. The scratch buffers
// make a value unsafe for concurrent use; give each goroutine its own.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

// RK4Stepper returns a Stepper backed by a fresh RK4.
func RK4Stepper() Stepper {
	return NewRK4().Step
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(f dynamo.Field, t float64, y dynamo.State, h float64) (dynamo.State, error) {
	n := len(y)
	r.ensureScratch(n)
	half := h / 2

	if err := stage(r.k1, f(t, y)); err != nil {
		return nil, err
	}

	floats.AddScaledTo(r.scratch, y, half, r.k1)
	if err := stage(r.k2, f(t+half, r.scratch)); err != nil {
		return nil, err
	}

	floats.AddScaledTo(r.scratch, y, half, r.k2)
	if err := stage(r.k3, f(t+half, r.scratch)); err != nil {
		return nil, err
	}

	floats.AddScaledTo(r.scratch, y, h, r.k3)
	if err := stage(r.k4, f(t+h, r.scratch)); err != nil {
		return nil, err
	}

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = y[i] + h*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])/6
	}

	return result, nil
}

// stage copies a derivative into its buffer; fields may reuse their output.
func stage(dst, dx dynamo.State) error {
	if len(dx) != len(dst) {
		return dynamo.ErrDimensionMismatch
	}
	copy(dst, dx)
	return nil
}
