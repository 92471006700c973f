// Package server provides the local HTTP and WebSocket surface of the
// gesture daemon: health and status introspection, the live event feed,
// the recent-event log, recalibration, and the MJPEG preview stream.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// Pipeline is the slice of the running application the API reports on and
// controls.
type Pipeline interface {
	// Snapshots returns the introspection state of every gesture detector.
	Snapshots() []gesture.Snapshot

	// Recalibrate clears calibration; detectors re-enter warm-up.
	Recalibrate()

	// IsEnabled reports whether detection is currently running.
	IsEnabled() bool

	// Subscribe registers a live event feed; the cancel func releases it.
	Subscribe() (<-chan event.Event, func())
}

// Config holds the server configuration. Nil fields disable the routes
// that depend on them.
type Config struct {
	StaticDir string
	Store     *store.Store
	Pipeline  Pipeline
	Camera    capture.Camera
}

// Server is the HTTP server for the gesture daemon.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Pipeline != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.HandleFunc("/api/recalibrate", s.handleRecalibrate)
		s.mux.Handle("/api/events", NewEventsHandler(s.config.Pipeline))
	}

	if s.config.Store != nil {
		s.mux.HandleFunc("/api/events/recent", s.handleRecentEvents)
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// handleStatus handles GET requests to /api/status with the enabled flag
// and every detector's snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]any{
		"enabled":   s.config.Pipeline.IsEnabled(),
		"detectors": s.config.Pipeline.Snapshots(),
	})
}

// handleRecalibrate handles POST requests to /api/recalibrate.
func (s *Server) handleRecalibrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.config.Pipeline.Recalibrate()
	writeJSON(w, map[string]any{"status": "ok"})
}

// handleRecentEvents handles GET requests to /api/events/recent. The
// optional limit query parameter caps the result, newest first.
func (s *Server) handleRecentEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	events, err := s.config.Store.Events().Recent(limit)
	if err != nil {
		http.Error(w, "Failed to query events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []*store.Event{}
	}

	writeJSON(w, map[string]any{"events": events})
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
