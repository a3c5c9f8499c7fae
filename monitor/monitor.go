// Package monitor exposes a running simulation's progress counters over
// HTTP, for watching long trace runs without interrupting them.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/xid"

	"github.com/duckyzx/OoOcpusim/timing/pipeline"
)

// Server serves live pipeline progress.
type Server struct {
	pipe  *pipeline.Pipeline
	runID string
	srv   *http.Server
}

// statsPayload is the wire format of GET /api/stats.
type statsPayload struct {
	RunID string `json:"run_id"`
	pipeline.Snapshot
}

// New builds a monitor for pipe listening on addr. Every monitor gets a
// fresh run ID so overlapping runs can be told apart.
func New(pipe *pipeline.Pipeline, addr string) *Server {
	s := &Server{
		pipe:  pipe,
		runID: xid.New().String(),
	}
	s.srv = &http.Server{Addr: addr, Handler: s.Handler()}
	return s
}

// RunID returns the identifier stamped on every response.
func (s *Server) RunID() string {
	return s.runID
}

// Handler returns the HTTP handler, for mounting or testing without a
// listener.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/stats", s.handleStats).Methods("GET")
	return r
}

// Start begins serving in the background. The returned channel delivers
// the terminal serve error, if any.
func (s *Server) Start() <-chan error {
	errc := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()
	return errc
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	payload := statsPayload{
		RunID:    s.runID,
		Snapshot: s.pipe.Progress(),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
