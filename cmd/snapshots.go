package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/graphfit/internal/store"
)

var (
	snapshotDataDir string
	keepLast        int
	olderThanDays   int
	forceClean      bool
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Manage solve snapshots",
	Long: `Manage solve snapshots including listing and cleaning old snapshots.
Snapshots allow resuming long-running solves from saved state.`,
}

var listSnapshotsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available snapshots",
	Long:  `Display all snapshots with metadata including job ID, timestamp, iterations, cost, and file sizes.`,
	RunE:  runListSnapshots,
}

var cleanSnapshotsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old snapshots",
	Long: `Delete old snapshots based on retention policy.
You can specify how many snapshots to keep or delete snapshots older than N days.`,
	RunE: runCleanSnapshots,
}

var traceSnapshotsCmd = &cobra.Command{
	Use:   "trace [job-id]",
	Short: "Show a job's cost history",
	Long:  `Display the cost history recorded across resumes of a job.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTraceSnapshots,
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)

	snapshotsCmd.AddCommand(listSnapshotsCmd)
	snapshotsCmd.AddCommand(cleanSnapshotsCmd)
	snapshotsCmd.AddCommand(traceSnapshotsCmd)

	snapshotsCmd.PersistentFlags().StringVar(&snapshotDataDir, "data-dir", "./data", "Base directory for snapshot storage")

	cleanSnapshotsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the last N snapshots (0 = keep all)")
	cleanSnapshotsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete snapshots older than N days (0 = no age limit)")
	cleanSnapshotsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListSnapshots(cmd *cobra.Command, args []string) error {
	snapshotStore, err := store.NewFSStore(snapshotDataDir)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}

	infos, err := snapshotStore.ListSnapshots()
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No snapshots found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB ID\tTIMESTAMP\tPROBLEM\tVARS\tITERATION\tBEST COST\tSIZE")
	fmt.Fprintln(w, "------\t---------\t-------\t----\t---------\t---------\t----")

	for _, info := range infos {
		jobDir := filepath.Join(snapshotDataDir, "jobs", info.JobID)
		size, err := getDirSize(jobDir)
		sizeStr := "unknown"
		if err == nil {
			sizeStr = formatBytes(size)
		}

		timestamp := info.Timestamp.Format("2006-01-02 15:04:05")

		displayID := info.JobID
		if len(displayID) > 12 {
			displayID = displayID[:12] + "..."
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.6f\t%s\n",
			displayID,
			timestamp,
			info.Problem,
			info.Variables,
			info.Iteration,
			info.BestCost,
			sizeStr,
		)
	}

	w.Flush()

	fmt.Printf("\nTotal snapshots: %d\n", len(infos))
	return nil
}

func runTraceSnapshots(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	reader, err := store.NewTraceReader(snapshotDataDir, jobID)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No trace entries found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tITERATION\tCOST")
	fmt.Fprintln(w, "---------\t---------\t----")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%d\t%.6f\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Iteration,
			entry.Cost,
		)
	}
	w.Flush()

	return nil
}

func runCleanSnapshots(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	snapshotStore, err := store.NewFSStore(snapshotDataDir)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}

	infos, err := snapshotStore.ListSnapshots()
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No snapshots to clean.")
		return nil
	}

	toDelete := selectSnapshotsForDeletion(infos, keepLast, olderThanDays)

	if len(toDelete) == 0 {
		fmt.Println("No snapshots match deletion criteria.")
		return nil
	}

	fmt.Printf("Found %d snapshot(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		displayID := info.JobID
		if len(displayID) > 12 {
			displayID = displayID[:12] + "..."
		}
		fmt.Printf("  - %s (iteration %d, %s)\n",
			displayID,
			info.Iteration,
			info.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	if !forceClean {
		fmt.Print("\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		err := snapshotStore.DeleteSnapshot(info.JobID)
		if err != nil {
			slog.Error("Failed to delete snapshot", "job_id", info.JobID, "error", err)
			failed++
		} else {
			slog.Info("Deleted snapshot", "job_id", info.JobID)
			deleted++
		}
	}

	fmt.Printf("\nDeleted %d snapshot(s), %d failed.\n", deleted, failed)
	return nil
}

// selectSnapshotsForDeletion determines which snapshots should be deleted based on retention policy
func selectSnapshotsForDeletion(infos []store.SnapshotInfo, keepLast int, olderThanDays int) []store.SnapshotInfo {
	var toDelete []store.SnapshotInfo

	// Apply age-based deletion
	if olderThanDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.Timestamp.Before(cutoff) {
				toDelete = append(toDelete, info)
			}
		}
	}

	// Apply count-based deletion: keep the newest keepLast snapshots
	if keepLast > 0 && len(infos) > keepLast {
		sorted := make([]store.SnapshotInfo, len(infos))
		copy(sorted, infos)

		// Sort by timestamp (oldest first)
		for i := 0; i < len(sorted)-1; i++ {
			for j := 0; j < len(sorted)-i-1; j++ {
				if sorted[j].Timestamp.After(sorted[j+1].Timestamp) {
					sorted[j], sorted[j+1] = sorted[j+1], sorted[j]
				}
			}
		}

		numToDelete := len(sorted) - keepLast
		for i := 0; i < numToDelete; i++ {
			found := false
			for _, existing := range toDelete {
				if existing.JobID == sorted[i].JobID {
					found = true
					break
				}
			}
			if !found {
				toDelete = append(toDelete, sorted[i])
			}
		}
	}

	return toDelete
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
