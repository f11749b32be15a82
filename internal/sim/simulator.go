package sim

import (
	"context"
	"time"

	"github.com/san-kum/lotkasim/internal/dynamo"
	"github.com/san-kum/lotkasim/internal/integrators"
)

// Simulator solves a system and summarizes the resulting trajectory.
type Simulator struct {
	sys     dynamo.System
	metrics []dynamo.Metric
}

func New(sys dynamo.System) *Simulator {
	return &Simulator{
		sys:     sys,
		metrics: make([]dynamo.Metric, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric) { s.metrics = append(s.metrics, m) }

func (s *Simulator) System() dynamo.System { return s.sys }

// Run integrates from x0 and observes every sample with the registered
// metrics. Divergence is reported on the result, not as an error.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	traj, err := integrators.SolveSystem(s.sys, cfg.T0, x0, cfg.Dt, cfg.Steps)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Trajectory: traj,
		Metrics:    make(map[string]float64, len(s.metrics)),
		DivergedAt: traj.FirstInvalid(),
		Elapsed:    time.Since(start),
	}

	for _, m := range s.metrics {
		m.Reset()
		for _, sample := range traj {
			m.Observe(sample)
		}
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}
