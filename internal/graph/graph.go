package graph

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cwbudde/graphfit/internal/variable"
)

// Graph holds the variables of an optimization problem, keyed by UUID.
//
// UUID equality is variable identity: adding a variable whose UUID is
// already present is a merge, not a duplicate. Iteration order is the
// insertion order of distinct variables, so block layouts are stable
// across calls.
//
// Membership operations are safe for concurrent use. The data inside the
// held variables is not synchronized here; the solver serializes access
// per variable.
type Graph struct {
	mu    sync.RWMutex
	order []uuid.UUID
	vars  map[uuid.UUID]variable.Variable
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{vars: make(map[uuid.UUID]variable.Variable)}
}

// Add inserts a variable, deduplicating by UUID. If a variable with the
// same UUID is already held, the held instance is returned and added is
// false; the argument is discarded.
func (g *Graph) Add(v variable.Variable) (held variable.Variable, added bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.vars[v.UUID()]; ok {
		return existing, false
	}
	g.vars[v.UUID()] = v
	g.order = append(g.order, v.UUID())
	return v, true
}

// Get returns the variable with the given UUID, if held.
func (g *Graph) Get(id uuid.UUID) (variable.Variable, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v, ok := g.vars[id]
	return v, ok
}

// Len returns the number of distinct variables.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}

// Variables returns the held variables in insertion order.
func (g *Graph) Variables() []variable.Variable {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]variable.Variable, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.vars[id])
	}
	return out
}

// Dim returns the total number of stored scalar elements across all
// variables.
func (g *Graph) Dim() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	dim := 0
	for _, id := range g.order {
		dim += g.vars[id].Size()
	}
	return dim
}

// Values returns a detached copy of every variable's current data.
func (g *Graph) Values() map[uuid.UUID][]float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(map[uuid.UUID][]float64, len(g.order))
	for _, id := range g.order {
		out[id] = variable.Snapshot(g.vars[id])
	}
	return out
}

// SetValues writes values into the matching variables' data in place.
// UUIDs with no matching variable are an error; sizes must match exactly.
func (g *Graph) SetValues(values map[uuid.UUID][]float64) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for id, vals := range values {
		v, ok := g.vars[id]
		if !ok {
			return fmt.Errorf("graph: no variable with uuid %s", id)
		}
		if len(vals) != v.Size() {
			return fmt.Errorf("graph: value length %d does not match size %d for %s", len(vals), v.Size(), id)
		}
		copy(v.Data(), vals)
	}
	return nil
}

// Snapshot returns a new graph holding clones of every variable. The
// clones share identity with the originals but have independent storage,
// so a snapshot serves as a rollback point or an input to a parallel
// solve.
func (g *Graph) Snapshot() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := New()
	for _, id := range g.order {
		snap.Add(g.vars[id].Clone())
	}
	return snap
}

// Restore copies the snapshot's values back into this graph's variables.
func (g *Graph) Restore(snap *Graph) error {
	return g.SetValues(snap.Values())
}
