package templates

import (
	"github.com/JonMunkholm/tabview/internal/core"
	"github.com/JonMunkholm/tabview/internal/table"
	"github.com/a-h/templ"
)

// tableModel is the table fragment's view of a session snapshot.
type tableModel struct {
	Generation  uint64
	Busy        bool
	HasDataset  bool
	SourceName  string
	VisibleRows int
	TotalRows   int
	Aggregate   string
	Columns     []columnModel
	Rows        []rowModel
}

type columnModel struct {
	Index    int
	Name     string
	Glyph    string
	AriaSort string
	Filter   string
}

// rowModel carries one projected row. Absent holds one entry per missing
// trailing cell so short rows still span the header.
type rowModel struct {
	Cells  []string
	Absent []struct{}
}

func newTableModel(v core.View) tableModel {
	m := tableModel{
		Generation:  v.Generation,
		Busy:        v.Busy,
		HasDataset:  v.HasDataset,
		SourceName:  v.SourceName,
		VisibleRows: v.VisibleRows,
		TotalRows:   v.TotalRows,
		Aggregate:   v.AggregateMsg,
	}
	if !v.HasDataset {
		return m
	}

	header := v.Header()
	m.Columns = make([]columnModel, len(header))
	for i, name := range header {
		dir := table.Unset
		if i < len(v.Sort) {
			dir = v.Sort[i]
		}
		col := columnModel{Index: i, Name: name, Glyph: dir.Glyph(), AriaSort: ariaSort(dir)}
		if i < len(v.Columns) {
			col.Filter = v.Columns[i]
		}
		m.Columns[i] = col
	}

	body := v.Body()
	m.Rows = make([]rowModel, len(body))
	for i, row := range body {
		m.Rows[i].Cells = row
		if missing := len(header) - len(row); missing > 0 {
			m.Rows[i].Absent = make([]struct{}, missing)
		}
	}
	return m
}

// Table renders the table fragment: status line, aggregate label, header row
// with sort buttons, column filter inputs and the projected rows. Filter
// inputs are rendered with their current text so a redraw keeps them.
func Table(v core.View) templ.Component {
	return component("table", newTableModel(v))
}

// AggregateLabel renders the aggregate result line.
func AggregateLabel(label string) templ.Component {
	return component("aggregate", label)
}

func ariaSort(d table.Direction) string {
	switch d {
	case table.Ascending:
		return "ascending"
	case table.Descending:
		return "descending"
	default:
		return "none"
	}
}
