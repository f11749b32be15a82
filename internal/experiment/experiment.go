// Package experiment turns a validated config into a solved, summarized and
// optionally stored run.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/lotkasim/internal/analysis"
	"github.com/san-kum/lotkasim/internal/config"
	"github.com/san-kum/lotkasim/internal/dynamo"
	"github.com/san-kum/lotkasim/internal/sim"
	"github.com/san-kum/lotkasim/internal/storage"
)

type Experiment struct {
	cfg       *config.Config
	sys       analysis.Tunable
	simulator *sim.Simulator
}

// New validates cfg and builds the system and simulator it describes, with
// the default metric set attached.
func New(reg *Registry, cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sys, err := reg.GetModel(cfg.Model, cfg.GetParams())
	if err != nil {
		return nil, err
	}

	s := sim.New(sys)
	for _, m := range reg.DefaultMetrics(sys) {
		s.AddMetric(m)
	}

	return &Experiment{cfg: cfg.Clone(), sys: sys, simulator: s}, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) System() analysis.Tunable { return e.sys }

func (e *Experiment) Labels() []string { return dynamo.Labels(e.sys) }

// Run solves from the configured initial state.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.RunFrom(ctx, e.cfg.GetInitState())
}

// RunFrom solves from x0 instead of the configured initial state.
func (e *Experiment) RunFrom(ctx context.Context, x0 dynamo.State) (*sim.Result, error) {
	res, err := e.simulator.Run(ctx, x0, e.cfg.SimConfig())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.cfg.Model, err)
	}
	return res, nil
}

// Metadata describes a finished run for storage.
func (e *Experiment) Metadata(x0 dynamo.State, res *sim.Result) *storage.RunMetadata {
	return &storage.RunMetadata{
		Model:      e.cfg.Model,
		Timestamp:  time.Now(),
		T0:         e.cfg.T0,
		Dt:         e.cfg.Dt,
		Steps:      e.cfg.Steps,
		Params:     e.sys.GetParams(),
		InitState:  x0.Clone(),
		Labels:     e.Labels(),
		Metrics:    res.Metrics,
		DivergedAt: res.DivergedAt,
	}
}

// Ensemble runs one solve per initial state concurrently with fresh metrics
// for each.
func (e *Experiment) Ensemble(ctx context.Context, reg *Registry, initials []dynamo.State) ([]*sim.Result, error) {
	ens := sim.NewEnsemble(e.sys, func() []dynamo.Metric { return reg.DefaultMetrics(e.sys) })
	return ens.Run(ctx, initials, e.cfg.SimConfig())
}

// NewSystem returns a fresh copy of the configured system, for callers that
// mutate coefficients such as parameter sweeps.
func (e *Experiment) NewSystem(reg *Registry) func() analysis.Tunable {
	return func() analysis.Tunable {
		sys, err := reg.GetModel(e.cfg.Model, e.cfg.GetParams())
		if err != nil {
			// the config was validated by New, so the factory cannot fail
			panic(err)
		}
		return sys
	}
}
