package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/graphfit/internal/graph"
	"github.com/cwbudde/graphfit/internal/variable"
)

// JobConfig holds configuration for a solve job (snapshot copy).
// This avoids import cycles with server package.
type JobConfig struct {
	Problem          string  `json:"problem"`
	Count            int     `json:"count"`
	Iters            int     `json:"iters"`
	PopSize          int     `json:"popSize"`
	Seed             int64   `json:"seed"`
	TrustRadius      float64 `json:"trustRadius,omitempty"`
	SnapshotInterval int     `json:"snapshotInterval,omitempty"` // Snapshot every N seconds (0 = disabled)
}

// VariableState is one variable's persisted identity and values. The UUID
// is the variable's deterministic identity, so a rebuilt problem (same
// config, same seed) produces variables these states apply to directly.
type VariableState struct {
	UUID   uuid.UUID `json:"uuid"`
	Type   string    `json:"type"`
	Values []float64 `json:"values"`
}

// Snapshot is a persisted solve state that can be resumed later.
//
// It saves the best variable values found so far, not the optimizer's
// internal population: on resume the problem is rebuilt from Config (the
// deterministic variable UUIDs make the states line up), the values are
// applied, and the optimizer restarts fresh. The best cost never regresses
// across a resume, but convergence is not a perfect continuation.
type Snapshot struct {
	// JobID is the unique identifier for this solve job
	JobID string `json:"jobId"`

	// States holds each variable's identity and best values
	States []VariableState `json:"states"`

	// BestCost is the summed squared residual cost achieved by States
	BestCost float64 `json:"bestCost"`

	// InitialCost is the starting cost for improvement tracking
	InitialCost float64 `json:"initialCost"`

	// Iteration is the iteration count when this snapshot was created
	Iteration int `json:"iteration"`

	// Timestamp records when this snapshot was created
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed to rebuild the problem
	// and to validate compatibility during resume
	Config JobConfig `json:"config"`
}

// SnapshotInfo contains metadata about a snapshot without the full
// variable states. Used for cheap listings.
type SnapshotInfo struct {
	JobID     string    `json:"jobId"`
	BestCost  float64   `json:"bestCost"`
	Iteration int       `json:"iteration"`
	Timestamp time.Time `json:"timestamp"`
	Problem   string    `json:"problem"`
	Count     int       `json:"count"`
	Variables int       `json:"variables"`
}

// NewSnapshot captures the current values of every variable in g.
func NewSnapshot(jobID string, g *graph.Graph, bestCost, initialCost float64, iteration int, config JobConfig) *Snapshot {
	variables := g.Variables()
	states := make([]VariableState, 0, len(variables))
	for _, v := range variables {
		states = append(states, VariableState{
			UUID:   v.UUID(),
			Type:   v.Type(),
			Values: variable.Snapshot(v),
		})
	}

	return &Snapshot{
		JobID:       jobID,
		States:      states,
		BestCost:    bestCost,
		InitialCost: initialCost,
		Iteration:   iteration,
		Timestamp:   time.Now(),
		Config:      config,
	}
}

// Apply writes the snapshot's values into the matching variables of g.
// Every state must resolve to a held variable of the same size.
func (s *Snapshot) Apply(g *graph.Graph) error {
	values := make(map[uuid.UUID][]float64, len(s.States))
	for _, st := range s.States {
		values[st.UUID] = st.Values
	}
	return g.SetValues(values)
}

// ToInfo converts a full Snapshot to SnapshotInfo (metadata only).
func (s *Snapshot) ToInfo() SnapshotInfo {
	return SnapshotInfo{
		JobID:     s.JobID,
		BestCost:  s.BestCost,
		Iteration: s.Iteration,
		Timestamp: s.Timestamp,
		Problem:   s.Config.Problem,
		Count:     s.Config.Count,
		Variables: len(s.States),
	}
}

// ValidationError represents an invalid snapshot field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid snapshot: %s %s", e.Field, e.Reason)
}

// Validate checks that the snapshot has usable data.
func (s *Snapshot) Validate() error {
	if s.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(s.States) == 0 {
		return &ValidationError{Field: "States", Reason: "cannot be empty"}
	}
	if s.Config.Problem == "" {
		return &ValidationError{Field: "Config.Problem", Reason: "cannot be empty"}
	}
	for i, st := range s.States {
		if st.Type == "" {
			return &ValidationError{Field: fmt.Sprintf("States[%d].Type", i), Reason: "cannot be empty"}
		}
		if len(st.Values) == 0 {
			return &ValidationError{Field: fmt.Sprintf("States[%d].Values", i), Reason: "cannot be empty"}
		}
	}
	return nil
}

// ValidateTypes checks every state's type name against a registry of
// known variable types and verifies the stored value lengths match the
// registered types' sizes.
func (s *Snapshot) ValidateTypes(reg *variable.Registry) error {
	for i, st := range s.States {
		proto, err := reg.New(st.Type)
		if err != nil {
			return fmt.Errorf("snapshot state %d: %w", i, err)
		}
		if len(st.Values) != proto.Size() {
			return &ValidationError{
				Field:  fmt.Sprintf("States[%d].Values", i),
				Reason: fmt.Sprintf("length %d does not match %s size %d", len(st.Values), st.Type, proto.Size()),
			}
		}
	}
	return nil
}
