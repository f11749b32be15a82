package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

func oscillator(t float64, x dynamo.State) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	var err error
	for i := 0; i < steps; i++ {
		x, err = integ.Step(oscillator, float64(i)*dt, x, dt)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4FourthOrder(t *testing.T) {
	// Halving dt must shrink the global error by roughly 2^4.
	decay := func(_ float64, y dynamo.State) dynamo.State { return dynamo.State{-y[0]} }
	errAt := func(dt float64) float64 {
		steps := int(math.Round(1.0 / dt))
		traj, err := Solve(decay, 0, dynamo.State{1}, dt, steps)
		if err != nil {
			t.Fatalf("solve: %v", err)
		}
		return math.Abs(traj.Final().Y[0] - math.Exp(-1))
	}

	ratio := errAt(0.1) / errAt(0.05)
	if ratio < 14 || ratio > 18 {
		t.Errorf("expected error ratio near 16, got %.3f", ratio)
	}
}

func TestRK4StageEvaluations(t *testing.T) {
	calls := 0
	times := []float64{}
	f := func(tm float64, y dynamo.State) dynamo.State {
		calls++
		times = append(times, tm)
		return dynamo.State{1}
	}

	if _, err := NewRK4().Step(f, 1.0, dynamo.State{0}, 0.5); err != nil {
		t.Fatalf("step: %v", err)
	}

	if calls != 4 {
		t.Fatalf("expected 4 evaluations, got %d", calls)
	}
	want := []float64{1.0, 1.25, 1.25, 1.5}
	for i := range want {
		if times[i] != want[i] {
			t.Errorf("stage %d evaluated at t=%v, want %v", i+1, times[i], want[i])
		}
	}
}

func TestRK4DimensionMismatch(t *testing.T) {
	bad := func(_ float64, y dynamo.State) dynamo.State { return dynamo.State{0} }

	_, err := NewRK4().Step(bad, 0, dynamo.State{1, 2}, 0.1)
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
	if !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Error("dimension mismatch should be an invalid argument")
	}
}

func TestRK4ScratchResize(t *testing.T) {
	integ := NewRK4()
	if _, err := integ.Step(oscillator, 0, dynamo.State{1, 0}, 0.1); err != nil {
		t.Fatalf("2d step: %v", err)
	}

	triple := func(_ float64, y dynamo.State) dynamo.State { return dynamo.State{1, 2, 3} }
	x, err := integ.Step(triple, 0, dynamo.State{0, 0, 0}, 1)
	if err != nil {
		t.Fatalf("3d step: %v", err)
	}
	if x[0] != 1 || x[1] != 2 || x[2] != 3 {
		t.Errorf("unexpected 3d result %v", x)
	}
}

func TestSolveStepErrorContext(t *testing.T) {
	calls := 0
	flaky := func(_ float64, y dynamo.State) dynamo.State {
		calls++
		if calls > 8 {
			return dynamo.State{}
		}
		return dynamo.State{0}
	}

	_, err := Solve(flaky, 0, dynamo.State{1}, 0.5, 5)
	var stepErr *dynamo.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.Step != 2 || stepErr.Time != 1.0 {
		t.Errorf("unexpected failure position: step %d t=%v", stepErr.Step, stepErr.Time)
	}
}
