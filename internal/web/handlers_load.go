package web

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/JonMunkholm/tabview/internal/core"
	"github.com/JonMunkholm/tabview/internal/logging"
	"github.com/JonMunkholm/tabview/internal/table"
)

// pasteSource names the dataset produced by a paste.
const pasteSource = "clipboard"

// handleLoad replaces the dataset with an uploaded file. The file is sent as
// the "file" field of a multipart form. A rejected file leaves the session
// untouched.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	sess := sessionFor(r)
	maxSize := s.cfg.Upload.MaxFileSize

	if maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			err = errNoFile
		}
		s.respondError(w, r, err, 0)
		return
	}
	defer file.Close()

	ds, err := s.service.Decode(r.Context(), core.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		MaxBytes:    maxSize,
	})
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	sess.Load(ds, header.Filename)
	logging.FromContext(r.Context()).Info("file loaded",
		"file", header.Filename,
		"size", header.Size,
		"rows", ds.Len(),
	)
	s.renderView(w, r, sess)
}

// handlePaste replaces the dataset with tab-separated text. The text is the
// raw body for text/plain requests and the "text" form field otherwise.
func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	sess := sessionFor(r)

	limit := s.cfg.Upload.MaxFileSize
	if limit <= 0 {
		limit = maxPasteSize
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var text string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			s.respondError(w, r, err, 0)
			return
		}
		text = string(body)
	} else {
		text = r.FormValue("text")
	}

	ds, err := s.service.ParsePaste(text)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	sess.Load(ds, pasteSource)
	s.renderView(w, r, sess)
}

// handleImport replaces the dataset with the rows of a database table named
// by the "table" field. "limit" caps the rows read.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFor(r)
	name := strings.TrimSpace(r.FormValue("table"))
	limit := parseIntParam(r, "limit", 0)

	grid, err := s.source.ImportTable(r.Context(), name, limit)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	ds := table.NewDataset(grid)
	if ds.Empty() {
		s.respondError(w, r, core.ErrEmptyInput, 0)
		return
	}

	sess.Load(ds, name)
	s.renderView(w, r, sess)
}
