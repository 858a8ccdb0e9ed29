package web

import (
	"net/http"

	"github.com/JonMunkholm/tabview/internal/core"
	"github.com/JonMunkholm/tabview/internal/web/templates"
)

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status   string                   `json:"status"`
	Sessions int                      `json:"sessions"`
	Decodes  core.DecodeLimiterStatus `json:"decodes"`
	Import   bool                     `json:"import"`
}

// handleHealth reports liveness and load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthResponse{
		Status:   "ok",
		Sessions: s.service.Len(),
		Decodes:  s.service.Limiter().Status(),
		Import:   s.source.Enabled(),
	})
}

// handleIndex renders the full page for the caller's session.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	params := templates.PageParams{
		View:          sessionFor(r).Snapshot(),
		ImportEnabled: s.source.Enabled(),
		MaxFileSize:   s.cfg.Upload.MaxFileSize,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Page(params).Render(r.Context(), w); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
	}
}

// handleTable renders the table fragment. The page script calls it after
// every change notification.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Table(sessionFor(r).Snapshot()).Render(r.Context(), w); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
	}
}

// handleView returns the current view as JSON.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, sessionFor(r).Snapshot())
}
