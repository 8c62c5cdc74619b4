package store

// Store defines the interface for snapshot persistence operations.
// Implementations must be thread-safe and handle concurrent access gracefully.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if a snapshot doesn't exist (for Load/Delete)
//   - Return descriptive errors for I/O, serialization, or validation failures
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveSnapshot atomically saves a snapshot for the given job.
	// If a snapshot already exists for this jobID, it is overwritten.
	// The implementation should use atomic write strategies (e.g., temp
	// file + rename) to prevent corruption in case of failures.
	SaveSnapshot(jobID string, snapshot *Snapshot) error

	// LoadSnapshot retrieves the snapshot for the given job.
	// Returns ErrNotFound if no snapshot exists for this jobID.
	LoadSnapshot(jobID string) (*Snapshot, error)

	// ListSnapshots returns metadata for all available snapshots.
	// The returned slice may be empty if no snapshots exist.
	ListSnapshots() ([]SnapshotInfo, error)

	// DeleteSnapshot removes the snapshot and all associated artifacts
	// (snapshot.json, trace.jsonl) for the given job.
	// Returns ErrNotFound if no snapshot exists for this jobID.
	DeleteSnapshot(jobID string) error
}

// ErrNotFound is returned when a requested snapshot does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing snapshot error.
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	if e.JobID != "" {
		return "snapshot not found: " + e.JobID
	}
	return "snapshot not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
