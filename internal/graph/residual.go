package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cwbudde/graphfit/internal/variable"
)

// Residual is an error term over one or more variables. The solver
// resolves the referenced UUIDs to data blocks and minimizes the sum of
// squared residual elements.
type Residual interface {
	// Variables returns the UUIDs of the involved variables, in the order
	// Evaluate expects their blocks.
	Variables() []uuid.UUID

	// Dim returns the number of residual elements.
	Dim() int

	// Evaluate writes the residual into out (length Dim) given the
	// variables' data blocks in the order of Variables.
	Evaluate(blocks [][]float64, out []float64) error
}

// Prior pulls a single variable toward observed target values.
type Prior struct {
	varID  uuid.UUID
	target []float64
	weight float64
}

// NewPrior creates a prior residual on v. The target length must match
// the variable's size.
func NewPrior(v variable.Variable, target []float64, weight float64) (*Prior, error) {
	if len(target) != v.Size() {
		return nil, fmt.Errorf("prior: target length %d does not match variable size %d", len(target), v.Size())
	}
	t := make([]float64, len(target))
	copy(t, target)
	return &Prior{varID: v.UUID(), target: t, weight: weight}, nil
}

func (p *Prior) Variables() []uuid.UUID { return []uuid.UUID{p.varID} }
func (p *Prior) Dim() int               { return len(p.target) }

func (p *Prior) Evaluate(blocks [][]float64, out []float64) error {
	if len(blocks) != 1 {
		return fmt.Errorf("prior: expected 1 block, got %d", len(blocks))
	}
	x := blocks[0]
	if len(x) != len(p.target) || len(out) != len(p.target) {
		return fmt.Errorf("prior: block/out length mismatch")
	}
	for i := range p.target {
		out[i] = p.weight * (x[i] - p.target[i])
	}
	return nil
}

// Between penalizes the deviation of b - a from an expected offset. Both
// variables must have the same size.
type Between struct {
	aID, bID uuid.UUID
	offset   []float64
	weight   float64
}

// NewBetween creates a pairwise residual between a and b with the
// expected elementwise offset b - a.
func NewBetween(a, b variable.Variable, offset []float64, weight float64) (*Between, error) {
	if a.Size() != b.Size() {
		return nil, fmt.Errorf("between: variable sizes differ: %d vs %d", a.Size(), b.Size())
	}
	if len(offset) != a.Size() {
		return nil, fmt.Errorf("between: offset length %d does not match variable size %d", len(offset), a.Size())
	}
	o := make([]float64, len(offset))
	copy(o, offset)
	return &Between{aID: a.UUID(), bID: b.UUID(), offset: o, weight: weight}, nil
}

func (r *Between) Variables() []uuid.UUID { return []uuid.UUID{r.aID, r.bID} }
func (r *Between) Dim() int               { return len(r.offset) }

func (r *Between) Evaluate(blocks [][]float64, out []float64) error {
	if len(blocks) != 2 {
		return fmt.Errorf("between: expected 2 blocks, got %d", len(blocks))
	}
	a, b := blocks[0], blocks[1]
	if len(a) != len(r.offset) || len(b) != len(r.offset) || len(out) != len(r.offset) {
		return fmt.Errorf("between: block/out length mismatch")
	}
	for i := range r.offset {
		out[i] = r.weight * (b[i] - a[i] - r.offset[i])
	}
	return nil
}
