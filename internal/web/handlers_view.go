package web

import (
	"net/http"

	"github.com/JonMunkholm/tabview/internal/logging"
	"github.com/JonMunkholm/tabview/internal/table"
	"github.com/JonMunkholm/tabview/internal/web/templates"
)

// handleGlobalFilter sets the global filter from the "q" field.
func (s *Server) handleGlobalFilter(w http.ResponseWriter, r *http.Request) {
	sess := sessionFor(r)
	sess.SetGlobalFilter(r.FormValue("q"))
	s.renderView(w, r, sess)
}

// handleColumnFilter sets the filter of column {col} from the "q" field.
func (s *Server) handleColumnFilter(w http.ResponseWriter, r *http.Request) {
	sess := sessionFor(r)
	col, err := parseColumn(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if err := sess.SetColumnFilter(col, r.FormValue("q")); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.renderView(w, r, sess)
}

// handleSort toggles the sort of column {col}. The sort completes in the
// background and the answer shows the busy state; listeners on /api/events
// hear when it lands. With wait=1 the answer is held until the sort settles.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	sess := sessionFor(r)
	col, err := parseColumn(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	done, err := sess.Sort(col)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if r.FormValue("wait") == "1" {
		select {
		case <-done:
		case <-r.Context().Done():
			s.respondError(w, r, r.Context().Err(), 0)
			return
		}
	}
	s.renderView(w, r, sess)
}

// aggregateResponse is the JSON body of an aggregate request.
type aggregateResponse struct {
	Column int                 `json:"column"`
	Kind   table.AggregateKind `json:"kind"`
	Label  string              `json:"label"`
	Count  int                 `json:"count"`
	Sum    *float64            `json:"sum,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// handleAggregate computes "kind" (count or sum, default count) over column
// {col} of the current view. A sum over non-numeric cells is not an error
// response; its label carries the message.
func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFor(r)
	col, err := parseColumn(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	kindName := r.FormValue("kind")
	if kindName == "" {
		kindName = string(table.KindCount)
	}
	kind, err := table.ParseAggregateKind(kindName)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	res, err := sess.Aggregate(col, kind)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.AggregateLabel(res.Label()).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("failed to render aggregate label", "error", err)
		}
		return
	}

	resp := aggregateResponse{
		Column: col,
		Kind:   kind,
		Label:  res.Label(),
		Count:  res.Count,
	}
	switch {
	case res.Err != nil:
		resp.Error = res.Err.Error()
	case kind == table.KindSum:
		sum := res.Sum
		resp.Sum = &sum
	}
	writeJSON(w, resp)
}
