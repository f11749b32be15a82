package analysis

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/lotkasim/internal/dynamo"
	"github.com/san-kum/lotkasim/internal/integrators"
	"github.com/san-kum/lotkasim/internal/sim"
)

// Tunable is a system whose coefficients can be changed by name.
type Tunable interface {
	dynamo.System
	dynamo.Configurable
}

type SweepConfig struct {
	Param    string
	Min, Max float64
	N        int
	// Index selects the component summarized at each point.
	Index int
	X0    dynamo.State
	Sim   sim.Config
}

// SweepPoint summarizes one solve at a single coefficient value. Min and
// Max cover the finite samples only; Final is the last state as produced.
type SweepPoint struct {
	Param      float64
	Min, Max   float64
	Final      dynamo.State
	DivergedAt int
}

// Sweep solves once per coefficient value spread evenly over [Min, Max].
// newSystem is called for every point so solves never share a system.
// Points are returned in ascending parameter order.
func Sweep(ctx context.Context, newSystem func() Tunable, cfg SweepConfig) ([]SweepPoint, error) {
	if cfg.N < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one point, got %d", dynamo.ErrInvalidArgument, cfg.N)
	}
	if cfg.Index < 0 || cfg.Index >= len(cfg.X0) {
		return nil, fmt.Errorf("%w: component %d out of range", dynamo.ErrInvalidArgument, cfg.Index)
	}

	step := 0.0
	if cfg.N > 1 {
		step = (cfg.Max - cfg.Min) / float64(cfg.N-1)
	}

	points := make([]SweepPoint, cfg.N)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range points {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			param := cfg.Min + float64(i)*step
			sys := newSystem()
			if err := sys.SetParam(cfg.Param, param); err != nil {
				return fmt.Errorf("%s=%g: %w", cfg.Param, param, err)
			}

			traj, err := integrators.SolveSystem(sys, cfg.Sim.T0, cfg.X0, cfg.Sim.Dt, cfg.Sim.Steps)
			if err != nil {
				return err
			}

			lo, hi := math.Inf(1), math.Inf(-1)
			for _, v := range traj.Component(cfg.Index) {
				if finite(v) {
					lo = math.Min(lo, v)
					hi = math.Max(hi, v)
				}
			}
			if math.IsInf(lo, 1) {
				lo, hi = math.NaN(), math.NaN()
			}

			points[i] = SweepPoint{
				Param:      param,
				Min:        lo,
				Max:        hi,
				Final:      traj.Final().Y,
				DivergedAt: traj.FirstInvalid(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}
