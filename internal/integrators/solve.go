package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

// Solve integrates f from (t0, y0) with steps fixed steps of size dt and
// returns steps+1 samples, the first being (t0, y0). A negative dt
// integrates backward. Non-finite states are returned as computed.
func Solve(f dynamo.Field, t0 float64, y0 dynamo.State, dt float64, steps int) (dynamo.Trajectory, error) {
	return SolveWith(RK4Stepper(), f, t0, y0, dt, steps)
}

// SolveSystem is Solve with an additional check that y0 matches the
// dimension sys expects.
func SolveSystem(sys dynamo.System, t0 float64, y0 dynamo.State, dt float64, steps int) (dynamo.Trajectory, error) {
	if len(y0) != sys.StateDim() {
		return nil, fmt.Errorf("%w: initial state has %d components, system expects %d",
			dynamo.ErrDimensionMismatch, len(y0), sys.StateDim())
	}
	return Solve(sys.Field(), t0, y0, dt, steps)
}

// SolveWith drives an arbitrary Stepper through the same fixed-step loop.
func SolveWith(step Stepper, f dynamo.Field, t0 float64, y0 dynamo.State, dt float64, steps int) (dynamo.Trajectory, error) {
	if err := validate(f, y0, dt, steps); err != nil {
		return nil, err
	}

	traj := make(dynamo.Trajectory, 0, steps+1)
	y := y0.Clone()
	t := t0
	traj = append(traj, dynamo.Sample{T: t, Y: y})

	for i := 0; i < steps; i++ {
		next, err := step(f, t, y, dt)
		if err != nil {
			return nil, &dynamo.StepError{Step: i, Time: t, Wrapped: err}
		}
		y = next
		t += dt
		traj = append(traj, dynamo.Sample{T: t, Y: y})
	}

	return traj, nil
}

func validate(f dynamo.Field, y0 dynamo.State, dt float64, steps int) error {
	if f == nil {
		return fmt.Errorf("%w: nil field", dynamo.ErrInvalidArgument)
	}
	if steps < 0 || steps == math.MaxInt {
		return fmt.Errorf("%w: steps must be in [0, %d), got %d", dynamo.ErrInvalidArgument, math.MaxInt, steps)
	}
	if dt == 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt must be finite and nonzero, got %g", dynamo.ErrInvalidArgument, dt)
	}
	if len(y0) == 0 {
		return fmt.Errorf("%w: empty initial state", dynamo.ErrInvalidArgument)
	}
	return nil
}
