// Package optim fits model coefficients by exhaustive grid search.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/lotkasim/internal/dynamo"
	"github.com/san-kum/lotkasim/internal/experiment"
	"github.com/san-kum/lotkasim/internal/sim"
)

// Objective scores a solve; lower is better. NaN scores are never best.
type Objective func(res *sim.Result) float64

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: need one range per parameter", dynamo.ErrInvalidArgument)
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: empty range for %s", dynamo.ErrInvalidArgument, params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

type Best struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
	Skipped   int
}

var ErrNoCandidate = errors.New("optim: no grid point produced a finite objective")

// Search evaluates every grid point in order. Points the builder rejects,
// such as non-positive coefficients, are skipped and counted.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	objective Objective,
) (*Best, error) {
	best := &Best{Value: math.Inf(1)}

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, objective, best); err != nil {
		return nil, err
	}
	if best.Params == nil {
		return best, ErrNoCandidate
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	objective Objective,
	best *Best,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			if errors.Is(err, dynamo.ErrInvalidArgument) {
				best.Skipped++
				return nil
			}
			return err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		best.Evaluated++

		val := objective(result)
		if val < best.Value {
			best.Value = val
			best.Params = make(map[string]float64, len(current))
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, next, buildExperiment, objective, best); err != nil {
			return err
		}
	}
	return nil
}

// RMSE scores a solve by its root mean square distance to target over the
// samples both share. Any non-finite sample makes the score +Inf.
func RMSE(target dynamo.Trajectory) Objective {
	return func(res *sim.Result) float64 {
		n := min(len(target), len(res.Trajectory))
		if n == 0 {
			return math.Inf(1)
		}

		sum := 0.0
		for i := 0; i < n; i++ {
			a, b := target[i].Y, res.Trajectory[i].Y
			if len(a) != len(b) || !a.IsValid() || !b.IsValid() {
				return math.Inf(1)
			}
			d := a.Sub(b).Norm()
			sum += d * d
		}
		return math.Sqrt(sum / float64(n))
	}
}

// ParseRange reads "name=lo:hi:n" into n evenly spaced values, or
// "name=v" into a single value.
func ParseRange(expr string) (string, []float64, error) {
	name, body, ok := strings.Cut(expr, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("%w: %q is not name=lo:hi:n", dynamo.ErrInvalidArgument, expr)
	}

	parts := strings.Split(body, ":")
	switch len(parts) {
	case 1:
		v, err := cast.ToFloat64E(strings.TrimSpace(parts[0]))
		if err != nil {
			return "", nil, fmt.Errorf("%w: %q: %v", dynamo.ErrInvalidArgument, expr, err)
		}
		return name, []float64{v}, nil
	case 3:
		lo, err1 := cast.ToFloat64E(strings.TrimSpace(parts[0]))
		hi, err2 := cast.ToFloat64E(strings.TrimSpace(parts[1]))
		n, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err := errors.Join(err1, err2, err3); err != nil {
			return "", nil, fmt.Errorf("%w: %q: %v", dynamo.ErrInvalidArgument, expr, err)
		}
		if n < 2 {
			return "", nil, fmt.Errorf("%w: %q needs at least 2 points", dynamo.ErrInvalidArgument, expr)
		}
		return name, floats.Span(make([]float64, n), lo, hi), nil
	default:
		return "", nil, fmt.Errorf("%w: %q is not name=lo:hi:n", dynamo.ErrInvalidArgument, expr)
	}
}
