package graph

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/cwbudde/graphfit/internal/opt"
	"github.com/cwbudde/graphfit/internal/variable"
)

// Config controls a Solve run.
type Config struct {
	MaxIters    int     // optimizer iterations
	PopSize     int     // optimizer population size
	Seed        int64   // random seed
	TrustRadius float64 // tangent-space search bound per dimension (default 1.0)
}

// Result holds the output of a Solve run.
type Result struct {
	BestCost    float64
	InitialCost float64
	Iterations  int
}

// Solve minimizes the summed squared residual cost over the graph's
// variables and writes the best update back into their data in place.
//
// The search runs in tangent space: each variable contributes
// LocalParameterization().LocalSize() dimensions when it has a
// parameterization, or Size() dimensions with plain additive updates when
// it does not. Parameterizations are created once per solve and dropped
// before Solve returns, so they never outlive their source variables.
func Solve(g *Graph, residuals []Residual, optimizer opt.Optimizer, cfg Config) (*Result, error) {
	variables := g.Variables()
	if len(variables) == 0 {
		return nil, fmt.Errorf("solve: graph has no variables")
	}
	if cfg.TrustRadius <= 0 {
		cfg.TrustRadius = 1.0
	}

	// Per-variable baseline values, tangent offsets and update rules.
	type block struct {
		v         variable.Variable
		param     variable.Parameterization
		baseline  []float64
		candidate []float64
		offset    int // into the tangent vector
		localSize int
	}

	blocks := make([]*block, len(variables))
	byID := make(map[uuid.UUID]*block, len(variables))
	localDim := 0
	for i, v := range variables {
		b := &block{
			v:         v,
			param:     v.LocalParameterization(),
			baseline:  variable.Snapshot(v),
			candidate: make([]float64, v.Size()),
			offset:    localDim,
		}
		if b.param != nil {
			b.localSize = b.param.LocalSize()
		} else {
			b.localSize = v.Size()
		}
		localDim += b.localSize
		blocks[i] = b
		byID[v.UUID()] = b
	}

	// Validate residual references once, up front.
	for _, res := range residuals {
		for _, id := range res.Variables() {
			if _, ok := byID[id]; !ok {
				return nil, fmt.Errorf("solve: residual references unknown variable %s", id)
			}
		}
	}

	resOut := make([][]float64, len(residuals))
	for i, res := range residuals {
		resOut[i] = make([]float64, res.Dim())
	}

	// apply composes the tangent delta onto every baseline block.
	apply := func(delta []float64) error {
		for _, b := range blocks {
			seg := delta[b.offset : b.offset+b.localSize]
			if b.param != nil {
				if err := b.param.Plus(b.baseline, seg, b.candidate); err != nil {
					return err
				}
				continue
			}
			for i := range b.baseline {
				b.candidate[i] = b.baseline[i] + seg[i]
			}
		}
		return nil
	}

	eval := func(delta []float64) float64 {
		if err := apply(delta); err != nil {
			return math.Inf(1)
		}
		cost := 0.0
		for i, res := range residuals {
			ids := res.Variables()
			in := make([][]float64, len(ids))
			for j, id := range ids {
				in[j] = byID[id].candidate
			}
			if err := res.Evaluate(in, resOut[i]); err != nil {
				return math.Inf(1)
			}
			for _, e := range resOut[i] {
				cost += e * e
			}
		}
		return cost
	}

	initialCost := eval(make([]float64, localDim))

	lower := make([]float64, localDim)
	upper := make([]float64, localDim)
	for i := 0; i < localDim; i++ {
		lower[i] = -cfg.TrustRadius
		upper[i] = cfg.TrustRadius
	}

	slog.Info("Starting solve",
		"variables", len(variables),
		"residuals", len(residuals),
		"local_dim", localDim,
		"initial_cost", initialCost,
	)

	best, bestCost := optimizer.Run(eval, lower, upper, localDim)

	// Never regress past the incumbent values.
	if bestCost > initialCost {
		best = make([]float64, localDim)
		bestCost = initialCost
	}

	if err := apply(best); err != nil {
		return nil, fmt.Errorf("solve: applying best update: %w", err)
	}
	for _, b := range blocks {
		copy(b.v.Data(), b.candidate)
	}

	slog.Info("Solve complete", "initial_cost", initialCost, "best_cost", bestCost)

	return &Result{
		BestCost:    bestCost,
		InitialCost: initialCost,
		Iterations:  cfg.MaxIters,
	}, nil
}
