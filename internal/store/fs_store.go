package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore implements the Store interface using filesystem-based persistence.
// Snapshots are stored in a directory structure: <baseDir>/jobs/<jobID>/
//
// Thread-safety: This implementation uses atomic file operations (rename)
// and does not require locks. Multiple goroutines can safely call methods
// concurrently.
type FSStore struct {
	baseDir string // Root directory for all snapshot data (e.g., "./data")
}

// NewFSStore creates a new filesystem-based store.
// The baseDir will be created if it doesn't exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FSStore{
		baseDir: baseDir,
	}, nil
}

// jobDir returns the directory path for a given job ID.
func (fs *FSStore) jobDir(jobID string) string {
	return filepath.Join(fs.baseDir, "jobs", jobID)
}

// snapshotPath returns the path to the snapshot.json file for a job.
func (fs *FSStore) snapshotPath(jobID string) string {
	return filepath.Join(fs.jobDir(jobID), "snapshot.json")
}

// SaveSnapshot atomically saves a snapshot for the given job.
// Uses temp file + rename pattern to ensure atomicity.
func (fs *FSStore) SaveSnapshot(jobID string, snapshot *Snapshot) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	jobDir := fs.jobDir(jobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	// Write to temporary file first (atomic pattern)
	tempPath := fs.snapshotPath(jobID) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp snapshot file: %w", err)
	}

	finalPath := fs.snapshotPath(jobID)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}

	slog.Debug("Snapshot saved", "jobID", jobID, "path", finalPath)
	return nil
}

// LoadSnapshot retrieves the snapshot for the given job.
func (fs *FSStore) LoadSnapshot(jobID string) (*Snapshot, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID cannot be empty")
	}

	path := fs.snapshotPath(jobID)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &NotFoundError{JobID: jobID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot: %w", err)
	}

	slog.Debug("Snapshot loaded", "jobID", jobID, "path", path)
	return &snapshot, nil
}

// ListSnapshots returns metadata for all available snapshots.
func (fs *FSStore) ListSnapshots() ([]SnapshotInfo, error) {
	jobsDir := filepath.Join(fs.baseDir, "jobs")

	if _, err := os.Stat(jobsDir); os.IsNotExist(err) {
		// No snapshots exist yet, return empty slice
		return []SnapshotInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat jobs directory: %w", err)
	}

	entries, err := os.ReadDir(jobsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs directory: %w", err)
	}

	var infos []SnapshotInfo

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		jobID := entry.Name()
		snapshotPath := fs.snapshotPath(jobID)

		if _, err := os.Stat(snapshotPath); os.IsNotExist(err) {
			continue // Skip directories without snapshot.json
		}

		snapshot, err := fs.LoadSnapshot(jobID)
		if err != nil {
			slog.Warn("Failed to load snapshot for listing", "jobID", jobID, "error", err)
			continue // Skip corrupted snapshots
		}

		infos = append(infos, snapshot.ToInfo())
	}

	slog.Debug("Listed snapshots", "count", len(infos))
	return infos, nil
}

// DeleteSnapshot removes the snapshot and all associated artifacts.
func (fs *FSStore) DeleteSnapshot(jobID string) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}

	jobDir := fs.jobDir(jobID)

	if _, err := os.Stat(jobDir); os.IsNotExist(err) {
		return &NotFoundError{JobID: jobID}
	} else if err != nil {
		return fmt.Errorf("failed to stat job directory: %w", err)
	}

	if err := os.RemoveAll(jobDir); err != nil {
		return fmt.Errorf("failed to remove job directory: %w", err)
	}

	slog.Debug("Snapshot deleted", "jobID", jobID, "path", jobDir)
	return nil
}
