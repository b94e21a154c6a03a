package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clipper/internal/interfaces"
	"github.com/ternarybob/clipper/internal/services/clip"
)

// AuthHandler exposes the tracker authorization flow over HTTP
type AuthHandler struct {
	authService interfaces.Authenticator
	clipService *clip.Service
	logger      arbor.ILogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService interfaces.Authenticator, clipService *clip.Service, logger arbor.ILogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		clipService: clipService,
		logger:      logger,
	}
}

// ConnectHandler runs the interactive authorization flow.
// POST /api/auth/connect
func (h *AuthHandler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := h.clipService.Connect(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Authorization failed")
		WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, h.clipService.Status())
}

// LogoutHandler discards the stored credential and resets the session.
// POST /api/auth/logout
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := h.clipService.Logout(); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteSuccess(w, "Logged out")
}
