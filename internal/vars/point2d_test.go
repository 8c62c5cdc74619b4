package vars

import (
	"strings"
	"testing"

	"github.com/cwbudde/graphfit/internal/variable"
)

func TestPoint2DConstruction(t *testing.T) {
	p := NewPoint2D(7, 1.0)

	if p.Size() != 2 {
		t.Errorf("Expected size 2, got %d", p.Size())
	}
	if len(p.Data()) != 2 {
		t.Errorf("Expected data length 2, got %d", len(p.Data()))
	}
	if p.Type() != Point2DType {
		t.Errorf("Expected type %s, got %s", Point2DType, p.Type())
	}
}

func TestPoint2DUUIDDeterminism(t *testing.T) {
	a := NewPoint2D(7, 1.0)
	b := NewPoint2D(7, 1.0)
	c := NewPoint2D(8, 1.0)

	if a.UUID() != b.UUID() {
		t.Errorf("Same metadata produced different UUIDs: %s vs %s", a.UUID(), b.UUID())
	}
	if a.UUID() == c.UUID() {
		t.Error("Different landmark ids produced the same UUID")
	}

	d := NewPoint2D(7, 2.0)
	if a.UUID() == d.UUID() {
		t.Error("Different stamps produced the same UUID")
	}
}

func TestPoint2DTypeStability(t *testing.T) {
	a := NewPoint2D(1, 0)
	b := NewPoint2D(2, 5.5)

	if a.Type() != b.Type() {
		t.Error("Type differs across instances of the same concrete class")
	}
	if a.Type() == NewPoint3D(1, 0).Type() {
		t.Error("Distinct concrete classes share a type name")
	}
	if a.Type() == NewOrientation3D(1, 0).Type() {
		t.Error("Distinct concrete classes share a type name")
	}
}

func TestPoint2DDataRoundTrip(t *testing.T) {
	p := NewPoint2D(3, 0)

	data := p.Data()
	data[0] = 1.5
	data[1] = -2.25

	got := p.Data()
	if got[0] != 1.5 || got[1] != -2.25 {
		t.Errorf("Round trip failed: got (%g, %g)", got[0], got[1])
	}
}

func TestPoint2DUUIDIndependentOfData(t *testing.T) {
	p := NewPoint2D(3, 0)
	before := p.UUID()

	p.Data()[0] = 42

	if p.UUID() != before {
		t.Error("Mutating data changed the UUID")
	}
}

func TestPoint2DCloneIndependence(t *testing.T) {
	v1 := NewPoint2D(9, 2.5)
	v1.Data()[0] = 1
	v1.Data()[1] = 2

	v2 := v1.Clone()

	if v1.UUID() != v2.UUID() {
		t.Error("Clone should preserve UUID")
	}
	if v1.Type() != v2.Type() {
		t.Error("Clone should preserve type")
	}
	if v2.Data()[0] != 1 || v2.Data()[1] != 2 {
		t.Error("Clone should copy data contents")
	}

	// Mutations must not propagate in either direction
	v2.Data()[0] = 100
	if v1.Data()[0] != 1 {
		t.Error("Mutating the clone changed the original")
	}
	v1.Data()[1] = 200
	if v2.Data()[1] != 2 {
		t.Error("Mutating the original changed the clone")
	}
}

func TestPoint2DNoParameterization(t *testing.T) {
	if NewPoint2D(1, 0).LocalParameterization() != nil {
		t.Error("Euclidean point should not have a local parameterization")
	}
}

func TestPoint2DPrint(t *testing.T) {
	p := NewPoint2D(5, 1.5)
	p.Data()[0] = 0.5

	out := variable.String(p)
	if !strings.Contains(out, Point2DType) || !strings.Contains(out, "id: 5") {
		t.Errorf("Unexpected print output: %q", out)
	}
}

func TestPoint3DBasics(t *testing.T) {
	p := NewPoint3D(4, 0.5)

	if p.Size() != 3 {
		t.Errorf("Expected size 3, got %d", p.Size())
	}
	if p.LocalParameterization() != nil {
		t.Error("Euclidean point should not have a local parameterization")
	}
	if p.UUID() != NewPoint3D(4, 0.5).UUID() {
		t.Error("Same metadata should produce the same UUID")
	}

	c := p.Clone()
	c.Data()[2] = 7
	if p.Data()[2] != 0 {
		t.Error("Mutating the clone changed the original")
	}
}
