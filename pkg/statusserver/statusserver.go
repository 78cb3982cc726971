// Package statusserver exposes a region driver's progress over HTTP so an
// operator can poll a long-running, hours-scale worker-pool batch job
// without tailing logs.
//
// Grounded on the general "expose job status over HTTP" motif; the
// router wiring below is a direct, minimal use of chi's documented API
// rather than a port of an existing handler.
package statusserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Status is the job progress snapshot served at GET /status.
type Status struct {
	JobID     string        `json:"job_id"`
	Stage     string        `json:"stage"`
	Done      int           `json:"done"`
	Total     int           `json:"total"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Err       string        `json:"error,omitempty"`
}

// Server tracks and serves the progress of one driver run, identified by
// a job id (see pkg/observability for the event hooks a caller can use
// alongside it).
type Server struct {
	mu        sync.RWMutex
	jobID     string
	startedAt time.Time
	stage     string
	done      int
	total     int
	err       error
}

// New creates a Server for a run identified by jobID.
func New(jobID string) *Server {
	return &Server{jobID: jobID, startedAt: time.Now()}
}

// Progress updates the current stage and progress counters. Its
// signature matches pkg/driver.ProgressFunc, so it can be passed
// directly as a driver option.
func (s *Server) Progress(stage string, done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage, s.done, s.total = stage, done, total
}

// Fail records a fatal error for reporting at /status.
func (s *Server) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Snapshot returns the current status.
func (s *Server) Snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{
		JobID:     s.jobID,
		Stage:     s.stage,
		Done:      s.done,
		Total:     s.total,
		StartedAt: s.startedAt,
		Elapsed:   time.Since(s.startedAt),
	}
	if s.err != nil {
		st.Err = s.err.Error()
	}
	return st
}

// Handler returns the chi router serving GET /status.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/status", s.handleStatus)
	return r
}

// ListenAndServe blocks serving Handler on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Snapshot())
}
