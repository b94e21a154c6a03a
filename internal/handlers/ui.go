package handlers

import (
	"embed"
	"net/http"

	"github.com/ternarybob/arbor"
)

//go:embed assets/index.html
var assets embed.FS

// UIHandler serves the embedded capture form
type UIHandler struct {
	logger arbor.ILogger
}

// NewUIHandler creates a new UI handler
func NewUIHandler(logger arbor.ILogger) *UIHandler {
	return &UIHandler{logger: logger}
}

// IndexHandler serves the capture form page.
// GET /
func (h *UIHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page, err := assets.ReadFile("assets/index.html")
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
