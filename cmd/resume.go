package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/graphfit/internal/graph"
	"github.com/cwbudde/graphfit/internal/opt"
	"github.com/cwbudde/graphfit/internal/problem"
	"github.com/cwbudde/graphfit/internal/store"
	"github.com/cwbudde/graphfit/internal/variable"
	"github.com/cwbudde/graphfit/internal/vars"
)

var (
	resumeDataDir string
	resumeIters   int
	resumeSeed    int64
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume a solve from its snapshot",
	Long: `Loads the snapshot for a job, rebuilds its problem, applies the saved
variable values, and continues solving. The rebuilt variables carry the
same deterministic UUIDs as the original run, so the saved states line
up exactly. The optimizer restarts with a fresh population; the best
cost never regresses, but convergence is not a perfect continuation.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for snapshot storage")
	resumeCmd.Flags().IntVar(&resumeIters, "iters", 0, "Max iterations (0 = reuse the snapshot's setting)")
	resumeCmd.Flags().Int64Var(&resumeSeed, "seed", 0, "Random seed for the resumed run (0 = derive from snapshot iteration)")

	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	snapshotStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}

	snapshot, err := snapshotStore.LoadSnapshot(jobID)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	if err := snapshot.Validate(); err != nil {
		return err
	}

	// Check the saved states against the known variable types before
	// rebuilding anything.
	registry := variable.NewRegistry()
	if err := vars.RegisterAll(registry); err != nil {
		return fmt.Errorf("failed to register variable types: %w", err)
	}
	if err := snapshot.ValidateTypes(registry); err != nil {
		return err
	}

	cfg := snapshot.Config
	slog.Info("Resuming job",
		"job_id", jobID,
		"problem", cfg.Problem,
		"iteration", snapshot.Iteration,
		"best_cost", snapshot.BestCost,
	)

	// Rebuild the problem. Same config + seed reproduces the same
	// variable UUIDs, so the snapshot applies directly.
	prob, err := problem.Build(cfg.Problem, cfg.Count, cfg.Seed)
	if err != nil {
		return fmt.Errorf("failed to rebuild problem: %w", err)
	}

	if err := snapshot.Apply(prob.Graph); err != nil {
		return fmt.Errorf("snapshot does not match rebuilt problem: %w", err)
	}

	maxIters := resumeIters
	if maxIters <= 0 {
		maxIters = cfg.Iters
	}
	seed := resumeSeed
	if seed == 0 {
		// Vary the seed across resumes so the fresh population explores
		// differently than the original run.
		seed = cfg.Seed + int64(snapshot.Iteration) + 1
	}

	optimizer := opt.NewMayfly(maxIters, cfg.PopSize, seed)

	start := time.Now()
	result, err := graph.Solve(prob.Graph, prob.Residuals, optimizer, graph.Config{
		MaxIters:    maxIters,
		PopSize:     cfg.PopSize,
		Seed:        seed,
		TrustRadius: cfg.TrustRadius,
	})
	if err != nil {
		return fmt.Errorf("solve failed: %w", err)
	}
	elapsed := time.Since(start)

	bestCost := result.BestCost
	if snapshot.BestCost > 0 && snapshot.BestCost < bestCost {
		// The saved values stay the incumbent. Roll the graph back so the
		// persisted cost still describes the persisted states.
		if err := snapshot.Apply(prob.Graph); err != nil {
			return fmt.Errorf("failed to restore incumbent values: %w", err)
		}
		bestCost = snapshot.BestCost
	}

	updated := store.NewSnapshot(jobID, prob.Graph, bestCost, snapshot.InitialCost,
		snapshot.Iteration+result.Iterations, cfg)
	if err := snapshotStore.SaveSnapshot(jobID, updated); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if err := appendTraceEntry(resumeDataDir, jobID, updated.Iteration, bestCost); err != nil {
		slog.Warn("Failed to append trace entry", "job_id", jobID, "error", err)
	}

	slog.Info("Resume complete",
		"job_id", jobID,
		"elapsed", elapsed,
		"best_cost", bestCost,
		"total_iterations", snapshot.Iteration+result.Iterations,
	)

	fmt.Printf("Resumed %s: cost %.6f -> %.6f (%s)\n",
		jobID, snapshot.BestCost, bestCost, elapsed.Round(time.Millisecond))

	return nil
}

// appendTraceEntry records the cost history across resumes in trace.jsonl.
func appendTraceEntry(dataDir, jobID string, iteration int, cost float64) error {
	tw, err := store.NewTraceWriter(dataDir, jobID, true)
	if err != nil {
		return err
	}
	defer tw.Close()

	return tw.Write(store.TraceEntry{
		Iteration: iteration,
		Cost:      cost,
		Timestamp: time.Now(),
	})
}
