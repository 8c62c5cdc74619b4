package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cwbudde/graphfit/internal/problem"
)

func TestServer_ListProblems(t *testing.T) {
	s := NewServer(":8080", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/problems", nil)
	w := httptest.NewRecorder()

	s.handleListProblems(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var names []string
	if err := json.NewDecoder(w.Body).Decode(&names); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(names) != len(problem.Names()) {
		t.Errorf("Expected %d problems, got %d", len(problem.Names()), len(names))
	}
}

func TestServer_CreateJob(t *testing.T) {
	s := NewServer(":8080", nil)

	config := JobConfig{
		Problem: problem.PointSmoothing,
		Count:   3,
		Iters:   10,
		PopSize: 20,
		Seed:    42,
	}

	body, _ := json.Marshal(config)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}

	var job Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}

	// State should be pending or running (since worker starts immediately)
	if job.State != StatePending && job.State != StateRunning {
		t.Errorf("Expected pending or running state, got %s", job.State)
	}
}

func TestServer_CreateJobDefaults(t *testing.T) {
	s := NewServer(":8080", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader([]byte("{}")))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}

	var job Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if job.Config.Problem != problem.PointSmoothing {
		t.Errorf("Expected default problem, got %s", job.Config.Problem)
	}
	if job.Config.Count != 10 || job.Config.Iters != 100 || job.Config.PopSize != 30 {
		t.Errorf("Defaults not applied: %+v", job.Config)
	}
}

func TestServer_CreateJobInvalidJSON(t *testing.T) {
	s := NewServer(":8080", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestServer_ListJobs(t *testing.T) {
	s := NewServer(":8080", nil)

	s.jobManager.CreateJob(JobConfig{Problem: problem.PointSmoothing, Count: 3})
	s.jobManager.CreateJob(JobConfig{Problem: problem.OrientationChain, Count: 3})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()

	s.handleListJobs(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var jobs []*Job
	if err := json.NewDecoder(w.Body).Decode(&jobs); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(jobs) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jobs))
	}
}

func TestServer_GetJobStatus(t *testing.T) {
	s := NewServer(":8080", nil)

	job := s.jobManager.CreateJob(JobConfig{Problem: problem.PointSmoothing, Count: 3, Iters: 10, PopSize: 20})
	s.jobManager.UpdateJob(job.ID, func(j *Job) {
		j.State = StateCompleted
		j.BestCost = 0.05
		j.Variables = 3
		end := time.Now()
		j.EndTime = &end
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID+"/status", nil)
	w := httptest.NewRecorder()

	s.handleJobsWithID(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var status map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if status["id"] != job.ID {
		t.Errorf("Wrong job in response: %v", status["id"])
	}
	if status["state"] != string(StateCompleted) {
		t.Errorf("Expected completed state, got %v", status["state"])
	}
	if status["bestCost"].(float64) != 0.05 {
		t.Errorf("Expected bestCost 0.05, got %v", status["bestCost"])
	}
	if _, ok := status["eps"]; !ok {
		t.Error("Status should report throughput")
	}
}

func TestServer_GetJobStatusNotFound(t *testing.T) {
	s := NewServer(":8080", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nonexistent/status", nil)
	w := httptest.NewRecorder()

	s.handleJobsWithID(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestServer_GetSnapshotDisabled(t *testing.T) {
	s := NewServer(":8080", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/some-job/snapshot", nil)
	w := httptest.NewRecorder()

	s.handleJobsWithID(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 with store disabled, got %d", w.Code)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := NewServer(":8080", nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()

	s.handleJobs(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	s := NewServer(":8080", nil)

	handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Preflight should not reach the next handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS headers missing")
	}
}
