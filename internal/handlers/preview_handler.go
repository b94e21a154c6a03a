package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// PreviewHandler renders captured markdown as HTML for the form's
// preview pane.
type PreviewHandler struct {
	markdown goldmark.Markdown
	logger   arbor.ILogger
}

// NewPreviewHandler creates a new preview handler
func NewPreviewHandler(logger arbor.ILogger) *PreviewHandler {
	return &PreviewHandler{
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:   logger,
	}
}

// PreviewRequest is the preview request body
type PreviewRequest struct {
	Markdown string `json:"markdown"`
}

// PreviewHandler converts markdown to HTML.
// POST /api/preview
func (h *PreviewHandler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(req.Markdown), &buf); err != nil {
		WriteError(w, http.StatusInternalServerError, "Markdown rendering failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"html": buf.String()})
}
