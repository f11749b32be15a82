package sim

import (
	"context"
	"runtime"

	"github.com/san-kum/lotkasim/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent solves of one system concurrently, one per
// initial condition. Parallelism is only ever across whole solves.
type Ensemble struct {
	sys        dynamo.System
	newMetrics func() []dynamo.Metric
	limit      int
}

// NewEnsemble creates an ensemble. newMetrics may be nil; it is called once
// per run because metrics carry state.
func NewEnsemble(sys dynamo.System, newMetrics func() []dynamo.Metric) *Ensemble {
	return &Ensemble{sys: sys, newMetrics: newMetrics, limit: runtime.GOMAXPROCS(0)}
}

// SetLimit bounds the number of solves in flight.
func (e *Ensemble) SetLimit(n int) {
	if n > 0 {
		e.limit = n
	}
}

// Run returns one result per initial condition, in input order. The first
// error cancels runs that have not started yet.
func (e *Ensemble) Run(ctx context.Context, initials []dynamo.State, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(initials))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i, x0 := range initials {
		g.Go(func() error {
			s := New(e.sys)
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, x0, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
