package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/graphfit/internal/graph"
	"github.com/cwbudde/graphfit/internal/opt"
	"github.com/cwbudde/graphfit/internal/problem"
	"github.com/cwbudde/graphfit/internal/store"
	"github.com/cwbudde/graphfit/internal/variable"
)

var (
	problemName string
	count       int
	iters       int
	popSize     int
	seed        int64
	trustRadius float64
	outPath     string
	printVars   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single-shot solve",
	Long:  `Builds the selected benchmark problem, solves it, and optionally writes the resulting snapshot.`,
	RunE:  runSolve,
}

func init() {
	runCmd.Flags().StringVar(&problemName, "problem", problem.PointSmoothing, "Problem name: point-smoothing, orientation-chain")
	runCmd.Flags().IntVar(&count, "count", 10, "Number of variables")
	runCmd.Flags().IntVar(&iters, "iters", 100, "Max iterations")
	runCmd.Flags().IntVar(&popSize, "pop", 30, "Population size")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().Float64Var(&trustRadius, "trust", 1.0, "Tangent-space search radius")
	runCmd.Flags().StringVar(&outPath, "out", "", "Write the result snapshot to this JSON file")
	runCmd.Flags().BoolVar(&printVars, "print", false, "Print solved variables to stdout")

	rootCmd.AddCommand(runCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	slog.Info("Starting solve", "problem", problemName, "count", count, "iters", iters)

	prob, err := problem.Build(problemName, count, seed)
	if err != nil {
		return fmt.Errorf("failed to build problem: %w", err)
	}

	slog.Info("Built problem", "variables", prob.Graph.Len(), "residuals", len(prob.Residuals))

	optimizer := opt.NewMayfly(iters, popSize, seed)

	start := time.Now()
	result, err := graph.Solve(prob.Graph, prob.Residuals, optimizer, graph.Config{
		MaxIters:    iters,
		PopSize:     popSize,
		Seed:        seed,
		TrustRadius: trustRadius,
	})
	if err != nil {
		return fmt.Errorf("solve failed: %w", err)
	}
	elapsed := time.Since(start)

	totalEvals := iters * popSize
	eps := float64(totalEvals) / elapsed.Seconds()

	slog.Info("Solve finished",
		"elapsed", elapsed,
		"initial_cost", result.InitialCost,
		"best_cost", result.BestCost,
		"evals_per_second", eps,
	)

	if printVars {
		for _, v := range prob.Graph.Variables() {
			variable.Fprint(os.Stdout, v)
		}
	}

	if outPath != "" {
		snapshot := store.NewSnapshot("local", prob.Graph, result.BestCost, result.InitialCost, result.Iterations, store.JobConfig{
			Problem:     problemName,
			Count:       count,
			Iters:       iters,
			PopSize:     popSize,
			Seed:        seed,
			TrustRadius: trustRadius,
		})

		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize snapshot: %w", err)
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		slog.Info("Snapshot written", "path", outPath)
	}

	fmt.Printf("Cost: %.6f -> %.6f (%.1f%% improvement, %s)\n",
		result.InitialCost, result.BestCost,
		improvementPercent(result.InitialCost, result.BestCost),
		elapsed.Round(time.Millisecond))

	return nil
}

// improvementPercent handles a zero initial cost (problem already at
// its optimum) without dividing by zero.
func improvementPercent(initial, best float64) float64 {
	if initial <= 0 {
		return 0
	}
	return 100 * (initial - best) / initial
}
