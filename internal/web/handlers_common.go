package web

// handlers_common.go holds helpers shared by the handlers.

import (
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/tabview/internal/core"
	"github.com/JonMunkholm/tabview/internal/web/middleware"
	"github.com/JonMunkholm/tabview/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is allowed on top of the file size limit for the
// multipart envelope.
const multipartOverhead = 1 << 20

// maxPasteSize bounds a pasted text body when no upload limit is configured.
const maxPasteSize = 10 << 20

// parseIntParam parses an integer form or query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.FormValue(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseColumn reads the {col} path parameter.
func parseColumn(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "col")
	col, err := strconv.Atoi(raw)
	if err != nil || col < 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidColumn, raw)
	}
	return col, nil
}

// sessionFor returns the caller's session.
func sessionFor(r *http.Request) *core.Session {
	return middleware.SessionFrom(r.Context())
}

// clientIP returns the client address without its port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// renderView answers a state change with the redrawn table for the page
// script, or the view as JSON for API clients.
func (s *Server) renderView(w http.ResponseWriter, r *http.Request, sess *core.Session) {
	view := sess.Snapshot()
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.Table(view).Render(r.Context(), w); err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, view)
}
