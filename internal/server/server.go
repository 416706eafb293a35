// Package server provides the local HTTP interface: health, live state and
// manual controls, the capture catalog, settings, an MJPEG preview and a
// websocket feed of emitted actions.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Lokesh983/Gesture-Control/internal/config"
	"github.com/Lokesh983/Gesture-Control/internal/server/api"
	"github.com/Lokesh983/Gesture-Control/internal/store"
)

// Controller is the running application as seen by the server.
type Controller interface {
	api.Controller
	FrameSource
	EventSource
}

// Config holds the server configuration.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Controller Controller
	// Settings is the configuration before stored settings are applied.
	Settings config.Config
}

// Server represents the HTTP server for the controller.
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

	if s.config.Store != nil {
		captures := api.NewCaptureHandler(s.config.Store)
		s.mux.Handle("/api/captures", captures)
		s.mux.Handle("/api/captures/", captures)
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Settings, s.config.Store))
	}

	if s.config.Controller != nil {
		for path, h := range api.NewControlHandler(s.config.Controller).Routes() {
			s.mux.HandleFunc(path, h)
		}
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Controller))
		s.mux.Handle("/api/events", NewEventsHandler(s.config.Controller))
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

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Controller != nil {
		state := s.config.Controller.State()
		response["running"] = state.Running
		response["enabled"] = state.Enabled
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// HTTPServer returns an http.Server for addr so the caller can shut it down.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
