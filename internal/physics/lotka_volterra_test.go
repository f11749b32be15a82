package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

func TestLotkaVolterraDerive(t *testing.T) {
	lv := NewLotkaVolterra()

	tests := []struct {
		name  string
		state dynamo.State
		want  dynamo.State
	}{
		{"reference", dynamo.State{40, 9}, dynamo.State{-3.2, 2.7}},
		{"extinct", dynamo.State{0, 0}, dynamo.State{0, 0}},
		{"prey only", dynamo.State{10, 0}, dynamo.State{1, 0}},
		{"predators only", dynamo.State{0, 10}, dynamo.State{0, -1}},
		{"equilibrium", dynamo.State{10, 5}, dynamo.State{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lv.Derive(0, tt.state)
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("dy[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLotkaVolterraFieldIsPure(t *testing.T) {
	lv := NewLotkaVolterra()
	f := lv.Field()
	y := dynamo.State{40, 9}

	first := f(0, y)
	second := f(123, y)
	if first[0] != second[0] || first[1] != second[1] {
		t.Errorf("field depends on time or call history: %v vs %v", first, second)
	}
	if y[0] != 40 || y[1] != 9 {
		t.Errorf("field mutated its input: %v", y)
	}

	if err := lv.SetParam("alpha", 1.0); err != nil {
		t.Fatal(err)
	}
	after := f(0, y)
	if after[0] != first[0] {
		t.Error("captured field changed after SetParam")
	}
	if lv.Field()(0, y)[0] == first[0] {
		t.Error("new field should reflect the updated alpha")
	}
}

func TestLotkaVolterraParams(t *testing.T) {
	lv := NewLotkaVolterra()
	params := lv.GetParams()
	if params["alpha"] != DefaultAlpha || params["beta"] != DefaultBeta ||
		params["delta"] != DefaultDelta || params["gamma"] != DefaultGamma {
		t.Errorf("unexpected defaults: %v", params)
	}

	if err := lv.SetParam("omega", 1); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected unknown param error, got %v", err)
	}
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := lv.SetParam("beta", v); !errors.Is(err, dynamo.ErrInvalidArgument) {
			t.Errorf("SetParam(beta, %v): expected invalid argument, got %v", v, err)
		}
	}
	if lv.GetParams()["beta"] != DefaultBeta {
		t.Error("rejected value must not be applied")
	}
}

func TestNewLotkaVolterraWith(t *testing.T) {
	lv, err := NewLotkaVolterraWith(1, 2, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	eq := lv.Equilibrium()
	if eq[0] != 4.0/3.0 || eq[1] != 0.5 {
		t.Errorf("equilibrium = %v", eq)
	}

	if _, err := NewLotkaVolterraWith(1, 0, 3, 4); err == nil {
		t.Error("expected error for zero beta")
	}
}

func TestLotkaVolterraInvariant(t *testing.T) {
	lv := NewLotkaVolterra()

	eq := lv.Equilibrium()
	v := lv.Invariant(eq)
	// The equilibrium minimizes the invariant.
	for _, s := range []dynamo.State{{40, 9}, {5, 2}, {10, 6}, {11, 5}} {
		if lv.Invariant(s) <= v {
			t.Errorf("invariant at %v (%v) not above minimum %v", s, lv.Invariant(s), v)
		}
	}

	if !math.IsNaN(lv.Invariant(dynamo.State{0, 5})) {
		t.Error("expected NaN outside the positive quadrant")
	}
}

func TestLotkaVolterraLabels(t *testing.T) {
	labels := dynamo.Labels(NewLotkaVolterra())
	if len(labels) != 2 || labels[0] != "prey" || labels[1] != "predator" {
		t.Errorf("labels = %v", labels)
	}
}
