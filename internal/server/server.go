// Package server provides the HTTP server for the preview stream, live
// gesture state and tuning API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/saiyan/internal/server/api"
	"github.com/ayusman/saiyan/internal/store"
)

// FrameSource provides the most recent composited frame as JPEG bytes
// together with a sequence number that grows with every new frame.
type FrameSource interface {
	LatestJPEG() ([]byte, uint64)
}

// StateSource provides a JSON-serialisable snapshot of the gesture state.
type StateSource interface {
	Snapshot() any
}

// Config holds the server configuration. Endpoints whose source is nil
// are not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Frames    FrameSource
	States    StateSource
	Tuner     api.Tuner
}

// Server represents the HTTP server for the Saiyan application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	state  *StateHandler

	mu   sync.Mutex
	http *http.Server
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

	if s.config.Store != nil {
		s.mux.Handle("/api/events", api.NewEventsHandler(s.config.Store))
	}

	if s.config.Tuner != nil {
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Tuner))
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}

	if s.config.States != nil {
		s.state = NewStateHandler(s.config.States)
		s.mux.Handle("/api/state", s.state)
	}

	// Serve static files if StaticDir is configured
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

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.http
	s.mu.Unlock()

	return srv.ListenAndServe()
}

// Shutdown stops the state broadcast and gracefully closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.state != nil {
		s.state.Close()
	}

	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
