package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State
		expected float64
	}{
		{State{3, 4}, 5.0},
		{State{1, 0}, 1.0},
		{State{0, 0}, 0.0},
		{State{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestState_Sub(t *testing.T) {
	a := State{1, 2, 3}
	b := State{4, 6, 8}

	diff := b.Sub(a)
	if diff[0] != 3 || diff[1] != 4 || diff[2] != 5 {
		t.Errorf("Sub failed: got %v", diff)
	}
	if got := (State{4, 6}).Sub(State{1, 2}).Norm(); got != 5 {
		t.Errorf("distance = %v, want 5", got)
	}
	if a[0] != 1 || b[0] != 4 {
		t.Error("Sub mutated its operands")
	}
}

func TestState_Clone(t *testing.T) {
	a := State{1, 2}
	c := a.Clone()
	c[0] = 99
	if a[0] != 1 {
		t.Error("Clone did not create independent copy")
	}
}

func TestTrajectory(t *testing.T) {
	tr := Trajectory{
		{T: 0, Y: State{1, 10}},
		{T: 0.5, Y: State{2, 20}},
		{T: 1.0, Y: State{3, 30}},
	}

	if tr.Dim() != 2 {
		t.Errorf("Dim() = %d", tr.Dim())
	}
	times := tr.Times()
	if len(times) != 3 || times[2] != 1.0 {
		t.Errorf("Times() = %v", times)
	}
	pred := tr.Component(1)
	if pred[0] != 10 || pred[2] != 30 {
		t.Errorf("Component(1) = %v", pred)
	}
	if tr.Final().T != 1.0 {
		t.Errorf("Final() = %v", tr.Final())
	}
	if !tr.IsValid() || tr.FirstInvalid() != -1 {
		t.Error("expected valid trajectory")
	}

	tr = append(tr, Sample{T: 1.5, Y: State{math.NaN(), 0}})
	if tr.FirstInvalid() != 3 {
		t.Errorf("FirstInvalid() = %d, want 3", tr.FirstInvalid())
	}

	var empty Trajectory
	if empty.Dim() != 0 || empty.Final().Y != nil {
		t.Error("empty trajectory should have zero dim and zero final sample")
	}
}

func TestDefaultLabels(t *testing.T) {
	labels := DefaultLabels(3)
	if len(labels) != 3 || labels[0] != "x0" || labels[2] != "x2" {
		t.Errorf("DefaultLabels(3) = %v", labels)
	}
}

func TestStepError(t *testing.T) {
	err := &StepError{Time: 1.5, Step: 15, Wrapped: ErrDimensionMismatch}
	expected := "step 15 (t=1.5000): dynamo: invalid argument: dimension mismatch between state and system"
	if err.Error() != expected {
		t.Errorf("StepError.Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrInvalidArgument) {
		t.Error("StepError should unwrap to ErrInvalidArgument")
	}
}
