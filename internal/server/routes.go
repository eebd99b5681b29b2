package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - job submission and polling
	mux.HandleFunc("/api/scrape", s.app.ScrapeHandler.SubmitHandler) // POST - upload codes + email
	mux.HandleFunc("/api/status/", s.app.StatusHandler.GetHandler)   // GET /{id} - poll job state
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)    // GET - health check
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)  // GET - build info

	// Everything else is an unknown endpoint
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
