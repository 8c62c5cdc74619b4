package graph

import (
	"testing"

	"github.com/cwbudde/graphfit/internal/vars"
)

func TestPriorEvaluate(t *testing.T) {
	p := vars.NewPoint2D(1, 0)
	p.Data()[0] = 3
	p.Data()[1] = 4

	prior, err := NewPrior(p, []float64{1, 1}, 2.0)
	if err != nil {
		t.Fatalf("NewPrior failed: %v", err)
	}

	if prior.Dim() != 2 {
		t.Errorf("Expected dim 2, got %d", prior.Dim())
	}
	if prior.Variables()[0] != p.UUID() {
		t.Error("Prior should reference the variable's UUID")
	}

	out := make([]float64, 2)
	if err := prior.Evaluate([][]float64{p.Data()}, out); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if out[0] != 4 || out[1] != 6 {
		t.Errorf("Expected (4, 6), got (%g, %g)", out[0], out[1])
	}
}

func TestPriorTargetLengthMismatch(t *testing.T) {
	p := vars.NewPoint2D(1, 0)
	if _, err := NewPrior(p, []float64{1, 2, 3}, 1.0); err == nil {
		t.Error("Expected error for target length mismatch")
	}
}

func TestPriorCopiesTarget(t *testing.T) {
	p := vars.NewPoint2D(1, 0)
	target := []float64{1, 2}

	prior, err := NewPrior(p, target, 1.0)
	if err != nil {
		t.Fatalf("NewPrior failed: %v", err)
	}

	target[0] = 99
	out := make([]float64, 2)
	if err := prior.Evaluate([][]float64{{1, 2}}, out); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if out[0] != 0 {
		t.Error("Prior should hold its own copy of the target")
	}
}

func TestBetweenEvaluate(t *testing.T) {
	a := vars.NewPoint2D(1, 0)
	b := vars.NewPoint2D(2, 0)
	a.Data()[0] = 1
	b.Data()[0] = 4

	between, err := NewBetween(a, b, []float64{2, 0}, 1.0)
	if err != nil {
		t.Fatalf("NewBetween failed: %v", err)
	}

	ids := between.Variables()
	if ids[0] != a.UUID() || ids[1] != b.UUID() {
		t.Error("Between should reference both variables in order")
	}

	out := make([]float64, 2)
	if err := between.Evaluate([][]float64{a.Data(), b.Data()}, out); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// b - a - offset = 4 - 1 - 2 = 1 on the first axis
	if out[0] != 1 || out[1] != 0 {
		t.Errorf("Expected (1, 0), got (%g, %g)", out[0], out[1])
	}
}

func TestBetweenValidation(t *testing.T) {
	a := vars.NewPoint2D(1, 0)
	b := vars.NewPoint3D(1, 0)

	if _, err := NewBetween(a, b, []float64{0, 0}, 1.0); err == nil {
		t.Error("Expected error for mismatched variable sizes")
	}

	c := vars.NewPoint2D(2, 0)
	if _, err := NewBetween(a, c, []float64{0}, 1.0); err == nil {
		t.Error("Expected error for offset length mismatch")
	}
}

func TestResidualBlockCountChecks(t *testing.T) {
	a := vars.NewPoint2D(1, 0)
	prior, _ := NewPrior(a, []float64{0, 0}, 1.0)

	out := make([]float64, 2)
	if err := prior.Evaluate(nil, out); err == nil {
		t.Error("Prior should reject a missing block")
	}

	b := vars.NewPoint2D(2, 0)
	between, _ := NewBetween(a, b, []float64{0, 0}, 1.0)
	if err := between.Evaluate([][]float64{a.Data()}, out); err == nil {
		t.Error("Between should reject a single block")
	}
}
