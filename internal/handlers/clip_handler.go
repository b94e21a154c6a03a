package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clipper/internal/common"
	"github.com/ternarybob/clipper/internal/interfaces"
	"github.com/ternarybob/clipper/internal/models"
	"github.com/ternarybob/clipper/internal/services/clip"
	"github.com/ternarybob/clipper/internal/services/extractor"
	"github.com/ternarybob/clipper/internal/services/tracker"
)

// ClipHandler exposes the clip form session over HTTP
type ClipHandler struct {
	clipService *clip.Service
	extractSvc  interfaces.ContentExtractor
	authService interfaces.Authenticator
	prefStorage interfaces.PreferenceStorage
	logger      arbor.ILogger
}

// NewClipHandler creates a new clip handler
func NewClipHandler(clipService *clip.Service, extractSvc interfaces.ContentExtractor, authService interfaces.Authenticator, prefStorage interfaces.PreferenceStorage, logger arbor.ILogger) *ClipHandler {
	return &ClipHandler{
		clipService: clipService,
		extractSvc:  extractSvc,
		authService: authService,
		prefStorage: prefStorage,
		logger:      logger,
	}
}

// StatusHandler reports the session state.
// GET /api/status
func (h *ClipHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": h.authService.IsAuthenticated(),
		"session":       h.clipService.Status(),
		"version":       common.GetVersion(),
	})
}

// TeamsHandler loads the clip form data: teams, the restored team's
// option lists, and the remembered selections.
// GET /api/teams
func (h *ClipHandler) TeamsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if !RequireAuth(w, h.authService) {
		return
	}

	if err := h.clipService.Load(r.Context()); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, h.clipService.Status())
}

// TeamOptionsHandler switches the session to another team and returns
// its option lists.
// GET /api/teams/{id}/options
func (h *ClipHandler) TeamOptionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if !RequireAuth(w, h.authService) {
		return
	}

	teamID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/teams/"), "/options")
	if teamID == "" {
		WriteError(w, http.StatusBadRequest, "Missing team id")
		return
	}

	if err := h.clipService.SelectTeam(r.Context(), teamID); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, h.clipService.Status())
}

// extractResponse wraps page content with the degradation flag
type extractResponse struct {
	Content  *models.PageContent `json:"content"`
	Degraded bool                `json:"degraded"`
	Warning  string              `json:"warning,omitempty"`
}

// ExtractHandler captures page content as markdown. Extraction
// failures degrade to a URL-only capture rather than erroring, so the
// form stays usable on pages that cannot be read.
// POST /api/extract
func (h *ClipHandler) ExtractHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" && strings.TrimSpace(req.Selection) == "" {
		WriteError(w, http.StatusBadRequest, "Missing url")
		return
	}

	content, err := h.extractSvc.Extract(r.Context(), &req)
	if err != nil {
		var extractErr *extractor.ExtractionError
		if errors.As(err, &extractErr) {
			h.logger.Warn().Err(err).Str("url", req.URL).Msg("Extraction degraded to URL-only capture")
			WriteJSON(w, http.StatusOK, extractResponse{
				Content: &models.PageContent{
					Title:  req.Title,
					URL:    req.URL,
					Source: models.ContentSourcePage,
				},
				Degraded: true,
				Warning:  "Page content could not be extracted. The issue will link to the page only.",
			})
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, extractResponse{Content: content})
}

// IssueHandler submits the clip form as a new tracker issue.
// POST /api/issues
func (h *ClipHandler) IssueHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if !RequireAuth(w, h.authService) {
		return
	}

	var req clip.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	issue, err := h.clipService.Submit(r.Context(), &req)
	if err != nil {
		WriteJSON(w, submissionStatus(err), map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusCreated, issue)
}

// submissionStatus maps the tracker error tiers to HTTP statuses
func submissionStatus(err error) int {
	var transportErr *tracker.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway
	}
	var gqlErr *tracker.GraphQLError
	if errors.As(err, &gqlErr) {
		return http.StatusUnprocessableEntity
	}
	var creationErr *tracker.IssueCreationError
	if errors.As(err, &creationErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// PreferencesHandler reads or replaces the saved form selections.
// GET/PUT /api/preferences
func (h *ClipHandler) PreferencesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		prefs, err := h.prefStorage.GetPreferences()
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, prefs)

	case http.MethodPut:
		var prefs models.Preferences
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := h.prefStorage.SavePreferences(&prefs); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, prefs)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// VersionHandler reports build information.
// GET /api/version
func (h *ClipHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// NotFoundHandler handles unmatched API routes
func (h *ClipHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "Not found")
}
