package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ProgressEvent is a point-in-time view of a solve job pushed to SSE
// subscribers.
type ProgressEvent struct {
	JobID       string    `json:"jobId"`
	State       JobState  `json:"state"`
	Iterations  int       `json:"iterations"`
	Variables   int       `json:"variables"`
	BestCost    float64   `json:"bestCost"`
	InitialCost float64   `json:"initialCost"`
	EPS         float64   `json:"eps"` // objective evaluations per second
	Timestamp   time.Time `json:"timestamp"`
}

// progressEvent builds an event from a job's current fields.
func progressEvent(job *Job, eps float64) ProgressEvent {
	return ProgressEvent{
		JobID:       job.ID,
		State:       job.State,
		Iterations:  job.Iterations,
		Variables:   job.Variables,
		BestCost:    job.BestCost,
		InitialCost: job.InitialCost,
		EPS:         eps,
		Timestamp:   time.Now(),
	}
}

// EventBroadcaster fans progress events out to the SSE subscribers of
// each job.
type EventBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan ProgressEvent]struct{}
}

// NewEventBroadcaster creates an empty broadcaster.
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		subscribers: make(map[string]map[chan ProgressEvent]struct{}),
	}
}

// Subscribe registers a new listener for a job's events.
func (eb *EventBroadcaster) Subscribe(jobID string) chan ProgressEvent {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan ProgressEvent, 10)
	if eb.subscribers[jobID] == nil {
		eb.subscribers[jobID] = make(map[chan ProgressEvent]struct{})
	}
	eb.subscribers[jobID][ch] = struct{}{}

	slog.Debug("SSE client subscribed", "job_id", jobID, "clients", len(eb.subscribers[jobID]))
	return ch
}

// Unsubscribe drops a listener and closes its channel. Safe to call for
// a channel already removed by CleanupJob.
func (eb *EventBroadcaster) Unsubscribe(jobID string, ch chan ProgressEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs, ok := eb.subscribers[jobID]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}

	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(eb.subscribers, jobID)
	}
}

// Broadcast delivers an event to every subscriber of its job. A
// subscriber whose channel is full misses the event rather than
// blocking the solve.
func (eb *EventBroadcaster) Broadcast(event ProgressEvent) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for ch := range eb.subscribers[event.JobID] {
		select {
		case ch <- event:
		default:
			slog.Warn("Dropping progress event, subscriber is slow", "job_id", event.JobID)
		}
	}
}

// CleanupJob closes every subscriber channel of a finished job.
// Buffered events are still delivered before the channels report closed.
func (eb *EventBroadcaster) CleanupJob(jobID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for ch := range eb.subscribers[jobID] {
		close(ch)
	}
	delete(eb.subscribers, jobID)
}

// handleJobStream handles SSE connections for job progress
func (s *Server) handleJobStream(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	events := s.jobManager.broadcaster.Subscribe(jobID)
	defer s.jobManager.broadcaster.Unsubscribe(jobID, events)

	// New subscribers see the job's current state immediately
	if err := writeSSEEvent(w, progressEvent(job, 0)); err != nil {
		slog.Error("Failed to write initial SSE event", "error", err)
		return
	}
	flusher.Flush()

	// Keep idle connections alive through proxies
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("SSE client disconnected", "job_id", jobID)
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, event); err != nil {
				slog.Error("Failed to write SSE event", "error", err)
				return
			}
			flusher.Flush()

		case <-ping.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes one event in "data: {json}\n\n" framing.
func writeSSEEvent(w http.ResponseWriter, event ProgressEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
