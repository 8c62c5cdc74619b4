package variable

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Variable is the capability set every optimization variable implements.
//
// A Variable groups one or more scalar values that the optimization engine
// treats as a single block, such as a 2D point (x, y) or a 3D rotation
// stored as a quaternion. The engine only ever sees this interface; it
// reads Size and Data to evaluate residuals, updates Data in place while
// solving, and deduplicates variables by UUID equality.
//
// Identity (Type, UUID, Size) is fixed at construction. Data is the only
// mutable facet. None of the methods synchronize access; the engine
// serializes reads and writes per variable.
type Variable interface {
	// Type returns a name that is identical for all instances of one
	// concrete variable type and distinct across types. Concrete types
	// report an explicit constant rather than relying on reflection.
	Type() string

	// UUID returns the deterministic identity of this variable. It is a
	// pure function of Type and the construction metadata, never of the
	// current Data: constructing the same concrete type from the same
	// metadata always yields the same UUID, across processes and restarts.
	UUID() uuid.UUID

	// Size returns the number of contiguous scalar elements, fixed for
	// the lifetime of the instance and at least 1. It may exceed the true
	// degrees of freedom, e.g. 4 quaternion elements for 3 rotational DOF.
	Size() int

	// Data returns the variable's backing block. The slice has length
	// exactly Size, stays valid for the variable's lifetime, and writes
	// through to the variable. Use Snapshot for a detached copy.
	Data() []float64

	// Print writes a human-readable description to w. Debug output only,
	// not a serialization format.
	Print(w io.Writer)

	// Clone returns a deep copy: a new instance of the most-derived type
	// with equal Type, UUID and Data contents but independent storage.
	Clone() Variable

	// LocalParameterization returns a freshly constructed manifold update
	// rule for this variable, or nil when plain additive updates over all
	// Size elements suffice. Each call returns an independent, stateless
	// value. The caller owns the result, but its validity is bounded by
	// this variable's lifetime: the engine must drop all parameterizations
	// derived from a variable before dropping the variable itself.
	LocalParameterization() Parameterization
}

// Parameterization describes how a tangent-space update composes with a
// variable's stored representation. Over-parameterized or locally
// nonlinear variables (rotations, manifolds with singular charts) use this
// instead of elementwise addition.
type Parameterization interface {
	// GlobalSize is the number of stored elements (the variable's Size).
	GlobalSize() int

	// LocalSize is the tangent-space dimensionality, at most GlobalSize.
	LocalSize() int

	// Plus computes result = x ⊕ delta, where x has GlobalSize elements,
	// delta has LocalSize elements and result has GlobalSize elements.
	// result may alias x.
	Plus(x, delta, result []float64) error
}

// Snapshot returns a detached copy of v's current data. Mutating the
// returned slice never affects v.
func Snapshot(v Variable) []float64 {
	out := make([]float64, v.Size())
	copy(out, v.Data())
	return out
}

// Fprint renders any variable to w through its Print method, so logging
// code handles all concrete types uniformly.
func Fprint(w io.Writer, v Variable) {
	v.Print(w)
}

// String renders a variable to a string via its Print method.
func String(v Variable) string {
	var sb strings.Builder
	v.Print(&sb)
	return sb.String()
}

// CheckSize panics when the backing buffer length does not match the
// declared size. Concrete types call this at construction; a mismatch is a
// programming error, not a recoverable condition.
func CheckSize(typeName string, data []float64, size int) {
	if size < 1 {
		panic(fmt.Sprintf("%s: size must be >= 1, got %d", typeName, size))
	}
	if len(data) != size {
		panic(fmt.Sprintf("%s: buffer length %d does not match size %d", typeName, len(data), size))
	}
}
