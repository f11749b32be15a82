package sim

import (
	"time"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

// Config holds the per-call integration parameters.
type Config struct {
	T0    float64
	Dt    float64
	Steps int
}

// DefaultConfig is the reference setup: t0=0, dt=0.1, 100 steps.
func DefaultConfig() Config {
	return Config{
		T0:    0.0,
		Dt:    0.1,
		Steps: 100,
	}
}

// Duration is the span of simulated time covered by cfg.
func (c Config) Duration() float64 {
	return c.Dt * float64(c.Steps)
}

type Result struct {
	Trajectory dynamo.Trajectory
	Metrics    map[string]float64
	// DivergedAt is the index of the first non-finite sample, or -1.
	DivergedAt int
	Elapsed    time.Duration
}

func (r *Result) Diverged() bool {
	return r.DivergedAt >= 0
}
