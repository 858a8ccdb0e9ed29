package table

// Row is an ordered sequence of cells.
type Row []string

// Cell returns the value at index i and whether it is present.
// Indices past the end of a short row are absent.
func (r Row) Cell(i int) (string, bool) {
	if i < 0 || i >= len(r) {
		return "", false
	}
	return r[i], true
}

// Dataset is a parsed table. Element 0 is the header row; the remaining
// elements are data rows. A Dataset is never mutated after parsing: loading
// new input produces a new Dataset.
type Dataset struct {
	rows []Row
}

// NewDataset wraps a parsed grid. The first row becomes the header.
func NewDataset(grid [][]string) Dataset {
	if len(grid) == 0 {
		return Dataset{}
	}
	rows := make([]Row, len(grid))
	for i, r := range grid {
		rows[i] = Row(r)
	}
	return Dataset{rows: rows}
}

// Empty reports whether the dataset has no header.
func (d Dataset) Empty() bool {
	return len(d.rows) == 0
}

// Header returns the header row, or nil for an empty dataset.
func (d Dataset) Header() Row {
	if d.Empty() {
		return nil
	}
	return d.rows[0]
}

// Rows returns the data rows (header excluded).
// The returned slice shares row storage with the dataset.
func (d Dataset) Rows() []Row {
	if len(d.rows) < 2 {
		return nil
	}
	return d.rows[1:]
}

// Len returns the number of data rows.
func (d Dataset) Len() int {
	return len(d.Rows())
}

// NumColumns returns the header width.
func (d Dataset) NumColumns() int {
	return len(d.Header())
}

// Grid returns every row including the header.
func (d Dataset) Grid() [][]string {
	if d.Empty() {
		return nil
	}
	grid := make([][]string, len(d.rows))
	for i, r := range d.rows {
		grid[i] = r
	}
	return grid
}

// ValidColumn reports whether col addresses a header column.
func (d Dataset) ValidColumn(col int) bool {
	return col >= 0 && col < d.NumColumns()
}
