package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Capture form
	mux.HandleFunc("/", s.app.UIHandler.IndexHandler)

	// API routes - Authentication
	mux.HandleFunc("/api/auth/connect", s.app.AuthHandler.ConnectHandler) // POST - run authorization flow
	mux.HandleFunc("/api/auth/logout", s.app.AuthHandler.LogoutHandler)   // POST - drop credential

	// API routes - Clip form
	mux.HandleFunc("/api/status", s.app.ClipHandler.StatusHandler)      // GET - session state
	mux.HandleFunc("/api/teams", s.app.ClipHandler.TeamsHandler)        // GET - load form data
	mux.HandleFunc("/api/teams/", s.handleTeamRoutes)                   // GET /{id}/options
	mux.HandleFunc("/api/extract", s.app.ClipHandler.ExtractHandler)    // POST - capture page content
	mux.HandleFunc("/api/issues", s.app.ClipHandler.IssueHandler)       // POST - create issue
	mux.HandleFunc("/api/preferences", s.app.ClipHandler.PreferencesHandler)
	mux.HandleFunc("/api/preview", s.app.PreviewHandler.PreviewHandler) // POST - markdown preview

	// API routes - System
	mux.HandleFunc("/api/version", s.app.ClipHandler.VersionHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.ClipHandler.NotFoundHandler)

	return mux
}

// handleTeamRoutes routes team subpaths to the appropriate handler
func (s *Server) handleTeamRoutes(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/options") {
		s.app.ClipHandler.TeamOptionsHandler(w, r)
		return
	}
	http.Error(w, "Not found", http.StatusNotFound)
}
