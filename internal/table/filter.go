package table

// filter.go derives the filtered view from a dataset's data rows.
//
// Every filter is a case-insensitive substring match and every call
// recomputes the view from the full row set; nothing is updated
// incrementally. The returned slice is always freshly allocated, but the rows
// inside it are the dataset's own rows, so sorting the view never reorders
// the dataset.

import (
	"fmt"
	"sort"
	"strings"
)

// Predicate decides whether a row belongs in the view.
type Predicate func(Row) bool

// GlobalPredicate matches rows where any present cell contains query.
// An empty query matches every row.
func GlobalPredicate(query string) Predicate {
	if query == "" {
		return func(Row) bool { return true }
	}
	q := strings.ToLower(query)
	return func(r Row) bool {
		for _, cell := range r {
			if strings.Contains(strings.ToLower(cell), q) {
				return true
			}
		}
		return false
	}
}

// ColumnPredicate matches rows whose cell at col is present and contains
// query. A row without a value at col never matches.
func ColumnPredicate(col int, query string) Predicate {
	q := strings.ToLower(query)
	return func(r Row) bool {
		cell, ok := r.Cell(col)
		return ok && strings.Contains(strings.ToLower(cell), q)
	}
}

// Filter returns the rows matching every predicate, in order.
func Filter(rows []Row, preds ...Predicate) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if matchAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

func matchAll(r Row, preds []Predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// FilterGlobal applies the global filter to rows.
func FilterGlobal(rows []Row, query string) []Row {
	return Filter(rows, GlobalPredicate(query))
}

// FilterColumn applies a single column filter to rows.
func FilterColumn(rows []Row, col int, query string) []Row {
	return Filter(rows, ColumnPredicate(col, query))
}

// FilterMode selects how several active filter inputs combine.
type FilterMode string

const (
	// ModeCompose ANDs the global query with every non-empty column query.
	ModeCompose FilterMode = "compose"
	// ModeLatest applies only the most recently edited filter input.
	ModeLatest FilterMode = "latest"
)

// ParseFilterMode validates a filter mode name.
func ParseFilterMode(s string) (FilterMode, error) {
	switch m := FilterMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeCompose, ModeLatest:
		return m, nil
	default:
		return "", fmt.Errorf("unknown filter mode %q", s)
	}
}

// globalInput marks the global filter as the last edited input.
const globalInput = -1

// FilterSet holds the text of every filter input for one loaded dataset.
// The zero value is an empty set in compose mode.
type FilterSet struct {
	Mode FilterMode

	global  string
	columns map[int]string
	last    int
	edited  bool
}

// NewFilterSet returns an empty set using mode.
func NewFilterSet(mode FilterMode) FilterSet {
	return FilterSet{Mode: mode, columns: make(map[int]string)}
}

// SetGlobal records the global query.
func (f *FilterSet) SetGlobal(query string) {
	f.global = query
	f.last = globalInput
	f.edited = true
}

// SetColumn records the query for column col. An empty query is kept so
// the input can be redrawn with its current text.
func (f *FilterSet) SetColumn(col int, query string) {
	if f.columns == nil {
		f.columns = make(map[int]string)
	}
	f.columns[col] = query
	f.last = col
	f.edited = true
}

// Global returns the global query.
func (f FilterSet) Global() string {
	return f.global
}

// Column returns the query for col, or "" if none was entered.
func (f FilterSet) Column(col int) string {
	return f.columns[col]
}

// Columns returns a copy of the per-column queries.
func (f FilterSet) Columns() map[int]string {
	out := make(map[int]string, len(f.columns))
	for k, v := range f.columns {
		out[k] = v
	}
	return out
}

// Predicates returns the predicates the set currently enforces.
func (f FilterSet) Predicates() []Predicate {
	if f.Mode == ModeLatest {
		if !f.edited {
			return nil
		}
		if f.last == globalInput {
			return []Predicate{GlobalPredicate(f.global)}
		}
		return []Predicate{ColumnPredicate(f.last, f.columns[f.last])}
	}

	var preds []Predicate
	if f.global != "" {
		preds = append(preds, GlobalPredicate(f.global))
	}
	cols := make([]int, 0, len(f.columns))
	for col, q := range f.columns {
		if q != "" {
			cols = append(cols, col)
		}
	}
	sort.Ints(cols)
	for _, col := range cols {
		preds = append(preds, ColumnPredicate(col, f.columns[col]))
	}
	return preds
}

// Apply recomputes the filtered view from the full set of data rows.
func (f FilterSet) Apply(rows []Row) []Row {
	return Filter(rows, f.Predicates()...)
}
