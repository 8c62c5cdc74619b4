// Package problem builds named benchmark problems so the CLI and server
// can exercise the solver without sensor integration. Problems are
// deterministic per seed: rebuilding with the same name, count and seed
// yields variables with identical UUIDs and identical residuals, which is
// what makes snapshot-based resume work.
package problem

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/graphfit/internal/graph"
	"github.com/cwbudde/graphfit/internal/vars"
)

// Known problem names.
const (
	PointSmoothing   = "point-smoothing"
	OrientationChain = "orientation-chain"
)

// Problem is a ready-to-solve graph plus its residuals.
type Problem struct {
	Name      string
	Graph     *graph.Graph
	Residuals []graph.Residual
}

// Names returns the available problem names.
func Names() []string {
	return []string{PointSmoothing, OrientationChain}
}

// Build constructs the named problem with count variables.
func Build(name string, count int, seed int64) (*Problem, error) {
	if count < 2 {
		return nil, fmt.Errorf("problem: count must be >= 2, got %d", count)
	}
	switch name {
	case PointSmoothing:
		return buildPointSmoothing(count, seed)
	case OrientationChain:
		return buildOrientationChain(count, seed)
	default:
		return nil, fmt.Errorf("problem: unknown problem %q (known: %v)", name, Names())
	}
}

// buildPointSmoothing lays count 2D landmarks on a unit circle, observes
// each with noise, and links neighbors with the true relative offsets.
// The solver has to balance noisy priors against clean between terms.
func buildPointSmoothing(count int, seed int64) (*Problem, error) {
	rng := rand.New(rand.NewSource(seed))
	g := graph.New()

	truth := make([][]float64, count)
	points := make([]*vars.Point2D, count)
	for i := 0; i < count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(count)
		truth[i] = []float64{math.Cos(angle), math.Sin(angle)}

		p := vars.NewPoint2D(uint64(i), float64(i))
		copy(p.Data(), truth[i])
		g.Add(p)
		points[i] = p
	}

	var residuals []graph.Residual
	for i := 0; i < count; i++ {
		observed := []float64{
			truth[i][0] + rng.NormFloat64()*0.1,
			truth[i][1] + rng.NormFloat64()*0.1,
		}
		prior, err := graph.NewPrior(points[i], observed, 1.0)
		if err != nil {
			return nil, err
		}
		residuals = append(residuals, prior)
	}
	for i := 0; i+1 < count; i++ {
		offset := []float64{
			truth[i+1][0] - truth[i][0],
			truth[i+1][1] - truth[i][1],
		}
		between, err := graph.NewBetween(points[i], points[i+1], offset, 2.0)
		if err != nil {
			return nil, err
		}
		residuals = append(residuals, between)
	}

	return &Problem{Name: PointSmoothing, Graph: g, Residuals: residuals}, nil
}

// buildOrientationChain creates count unit-quaternion orientations, each
// pulled toward a noisy observation of a rotation about the z axis. This
// exercises the manifold update path: the tangent space is 3-dimensional
// while the stored blocks have 4 elements.
func buildOrientationChain(count int, seed int64) (*Problem, error) {
	rng := rand.New(rand.NewSource(seed))
	g := graph.New()

	var residuals []graph.Residual
	for i := 0; i < count; i++ {
		o := vars.NewOrientation3D(uint64(i), float64(i))
		g.Add(o)

		// True rotation about z, observed with angular noise.
		angle := 0.2*float64(i) + rng.NormFloat64()*0.05
		observed := []float64{math.Cos(angle / 2), 0, 0, math.Sin(angle / 2)}

		prior, err := graph.NewPrior(o, observed, 1.0)
		if err != nil {
			return nil, err
		}
		residuals = append(residuals, prior)
	}

	return &Problem{Name: OrientationChain, Graph: g, Residuals: residuals}, nil
}
