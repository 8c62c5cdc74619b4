package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/graphfit/internal/graph"
	"github.com/cwbudde/graphfit/internal/opt"
	"github.com/cwbudde/graphfit/internal/problem"
	"github.com/cwbudde/graphfit/internal/store"
)

// runJob executes a solve job in the background.
// If snapshotStore is not nil and the job has snapshotInterval > 0,
// periodic snapshots are saved while the solve runs.
func runJob(ctx context.Context, jm *JobManager, snapshotStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "problem", job.Config.Problem)

	// Build the benchmark problem
	prob, err := problem.Build(job.Config.Problem, job.Config.Count, job.Config.Seed)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to build problem: %w", err))
		return err
	}

	slog.Info("Built problem", "job_id", jobID,
		"variables", prob.Graph.Len(), "residuals", len(prob.Residuals))

	jm.UpdateJob(jobID, func(j *Job) {
		j.Variables = prob.Graph.Len()
	})

	optimizer := opt.NewMayfly(job.Config.Iters, job.Config.PopSize, job.Config.Seed)

	// Check for cancellation before starting the expensive solve
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	start := time.Now()

	// Start progress monitoring goroutine
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	// Start snapshot monitoring goroutine if enabled
	snapshotDone := make(chan struct{})
	if snapshotStore != nil && job.Config.SnapshotInterval > 0 {
		go monitorSnapshots(ctx, jm, snapshotStore, prob.Graph, jobID, snapshotDone)
	} else {
		close(snapshotDone) // No snapshotting, close immediately
	}

	result, err := graph.Solve(prob.Graph, prob.Residuals, optimizer, graph.Config{
		MaxIters:    job.Config.Iters,
		PopSize:     job.Config.PopSize,
		Seed:        job.Config.Seed,
		TrustRadius: job.Config.TrustRadius,
	})

	close(progressDone)
	close(snapshotDone)
	elapsed := time.Since(start)

	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	// Check for cancellation after the solve
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestCost = result.BestCost
		j.InitialCost = result.InitialCost
		j.Iterations = result.Iterations
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	// Throughput in objective evaluations per second
	totalEvals := job.Config.Iters * job.Config.PopSize
	eps := float64(totalEvals) / elapsed.Seconds()

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"initial_cost", result.InitialCost,
		"best_cost", result.BestCost,
		"evals_per_second", eps,
	)

	// Persist the final state
	if snapshotStore != nil {
		if err := saveSnapshot(jm, snapshotStore, prob.Graph, jobID); err != nil {
			slog.Error("Failed to save final snapshot", "job_id", jobID, "error", err)
		}
	}

	// Broadcast the final state and release the job's subscribers
	if final, ok := jm.GetJob(jobID); ok {
		jm.broadcaster.Broadcast(progressEvent(final, eps))
	}
	jm.broadcaster.CleanupJob(jobID)

	return nil
}

// monitorProgress periodically broadcasts progress events during a solve
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			elapsed := time.Since(startTime).Seconds()

			var eps float64
			if elapsed > 0 && job.Iterations > 0 {
				eps = float64(job.Iterations*job.Config.PopSize) / elapsed
			}

			jm.broadcaster.Broadcast(progressEvent(job, eps))
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	if job, ok := jm.GetJob(jobID); ok {
		jm.broadcaster.Broadcast(progressEvent(job, 0))
	}
	jm.broadcaster.CleanupJob(jobID)
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	if job, ok := jm.GetJob(jobID); ok {
		jm.broadcaster.Broadcast(progressEvent(job, 0))
	}
	jm.broadcaster.CleanupJob(jobID)
	slog.Info("Job cancelled", "job_id", jobID)
}

// monitorSnapshots periodically saves snapshots during a solve
func monitorSnapshots(ctx context.Context, jm *JobManager, snapshotStore store.Store, g *graph.Graph, jobID string, done chan struct{}) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	interval := time.Duration(job.Config.SnapshotInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := saveSnapshot(jm, snapshotStore, g, jobID); err != nil {
				slog.Error("Failed to save snapshot", "job_id", jobID, "error", err)
			}
		}
	}
}

// saveSnapshot captures the graph's current values for the given job
func saveSnapshot(jm *JobManager, snapshotStore store.Store, g *graph.Graph, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Solve writes results back only when it finishes; until then the
	// graph still holds the initial values and the job reports no cost.
	// Saving those would present unsolved state as a perfect result.
	if job.Iterations == 0 {
		slog.Debug("Skipping snapshot, no results yet", "job_id", jobID)
		return nil
	}

	snapshot := store.NewSnapshot(
		jobID,
		g,
		job.BestCost,
		job.InitialCost,
		job.Iterations,
		job.Config,
	)

	if err := snapshotStore.SaveSnapshot(jobID, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	slog.Info("Snapshot saved",
		"job_id", jobID,
		"iteration", job.Iterations,
		"best_cost", job.BestCost,
	)

	return nil
}
