package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lotkasim/internal/dynamo"
	"github.com/san-kum/lotkasim/internal/metrics"
	"github.com/san-kum/lotkasim/internal/physics"
)

type decay struct{}

func (decay) StateDim() int { return 1 }
func (decay) Field() dynamo.Field {
	return func(_ float64, y dynamo.State) dynamo.State { return dynamo.State{-y[0]} }
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(x dynamo.Sample) {
	t.count++
	t.sum += x.Y[0]
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorRun(t *testing.T) {
	sim := New(decay{})

	cfg := Config{Dt: 0.1, Steps: 10}
	result, err := sim.Run(context.Background(), dynamo.State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Trajectory) != 11 {
		t.Errorf("expected 11 samples, got %d", len(result.Trajectory))
	}

	final := result.Trajectory.Final().Y[0]
	if math.Abs(final-math.Exp(-1.0)) > 1e-6 {
		t.Errorf("expected final state ~%.6f, got %.6f", math.Exp(-1.0), final)
	}
	if result.Diverged() {
		t.Error("decay should not diverge")
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(decay{})

	tests := []struct {
		name string
		cfg  Config
		x0   dynamo.State
	}{
		{"zero dt", Config{Dt: 0, Steps: 10}, dynamo.State{1}},
		{"negative steps", Config{Dt: 0.1, Steps: -1}, dynamo.State{1}},
		{"wrong dimension", Config{Dt: 0.1, Steps: 10}, dynamo.State{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.x0, tt.cfg)
			if !errors.Is(err, dynamo.ErrInvalidArgument) {
				t.Errorf("expected invalid argument, got %v", err)
			}
		})
	}
}

func TestSimulatorNegativeDt(t *testing.T) {
	sim := New(decay{})
	result, err := sim.Run(context.Background(), dynamo.State{1.0}, Config{T0: 1, Dt: -0.1, Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := result.Trajectory.Final(); math.Abs(got.T) > 1e-12 || math.Abs(got.Y[0]-math.E) > 1e-5 {
		t.Errorf("backward run ended at %+v", got)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(decay{}).Run(ctx, dynamo.State{1}, DefaultConfig())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(decay{})

	metric := &testMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), dynamo.State{1.0}, Config{Dt: 0.1, Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}

	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}
}

func TestSimulatorDivergence(t *testing.T) {
	lv, err := physics.NewLotkaVolterraWith(1e3, 1e-3, 1e3, 1e-3)
	if err != nil {
		t.Fatal(err)
	}

	result, err := New(lv).Run(context.Background(), dynamo.State{1e150, 1e150}, Config{Dt: 1, Steps: 5})
	if err != nil {
		t.Fatalf("divergence must not be an error: %v", err)
	}
	if !result.Diverged() {
		t.Error("expected divergence to be flagged")
	}
	if len(result.Trajectory) != 6 {
		t.Errorf("expected full trajectory, got %d samples", len(result.Trajectory))
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.T0 != 0 || cfg.Dt != 0.1 || cfg.Steps != 100 {
		t.Errorf("unexpected default config %+v", cfg)
	}
	if math.Abs(cfg.Duration()-10) > 1e-12 {
		t.Errorf("Duration() = %v", cfg.Duration())
	}
}

func TestEnsemble(t *testing.T) {
	lv := physics.NewLotkaVolterra()
	ens := NewEnsemble(lv, func() []dynamo.Metric { return metrics.Defaults(lv) })
	ens.SetLimit(2)

	initials := []dynamo.State{{40, 9}, {10, 5}, {5, 2}, {20, 20}}
	results, err := ens.Run(context.Background(), initials, DefaultConfig())
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}

	if len(results) != len(initials) {
		t.Fatalf("expected %d results, got %d", len(initials), len(results))
	}

	for i, res := range results {
		first := res.Trajectory[0].Y
		if first[0] != initials[i][0] || first[1] != initials[i][1] {
			t.Errorf("result %d out of order: starts at %v", i, first)
		}
		if _, ok := res.Metrics["peak_prey"]; !ok {
			t.Errorf("result %d missing metrics", i)
		}
	}

	single, err := New(lv).Run(context.Background(), initials[0], DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if single.Trajectory.Final().Y[0] != results[0].Trajectory.Final().Y[0] {
		t.Error("concurrent solve differs from sequential solve")
	}
}

func TestEnsembleError(t *testing.T) {
	ens := NewEnsemble(physics.NewLotkaVolterra(), nil)
	_, err := ens.Run(context.Background(), []dynamo.State{{40, 9}, {1}}, DefaultConfig())
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch, got %v", err)
	}
}
