package table

// sort.go orders a filtered view by one column.
//
// Sort state allows at most one active column. Activating a column toggles
// it between ascending and descending and clears every other column.
//
// Comparison is numeric when both cells are numeric strings and collated
// (locale-aware) otherwise. Absent cells compare as "".

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is the sort direction of one column.
type Direction int

const (
	Unset Direction = iota
	Ascending
	Descending
)

// String returns "asc", "desc" or "".
func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return ""
	}
}

// Glyph returns the header indicator for the direction.
func (d Direction) Glyph() string {
	switch d {
	case Ascending:
		return "▲"
	case Descending:
		return "▼"
	default:
		return "⇅"
	}
}

// sign returns +1 for ascending and -1 for descending.
func (d Direction) sign() int {
	if d == Descending {
		return -1
	}
	return 1
}

// SortState records the single sorted column and its direction. Every other
// column is unset. The zero value has nothing sorted.
type SortState struct {
	col int
	dir Direction
}

// Toggle activates sorting on col. A column that was ascending becomes
// descending; anything else becomes ascending. Every other column is unset.
// It returns the new direction.
func (s *SortState) Toggle(col int) Direction {
	if s.dir == Ascending && s.col == col {
		s.dir = Descending
	} else {
		s.dir = Ascending
	}
	s.col = col
	return s.dir
}

// Direction returns the direction of col.
func (s SortState) Direction(col int) Direction {
	if s.dir == Unset || s.col != col {
		return Unset
	}
	return s.dir
}

// Active returns the sorted column and its direction. ok is false when no
// column is sorted.
func (s SortState) Active() (col int, dir Direction, ok bool) {
	if s.dir == Unset {
		return 0, Unset, false
	}
	return s.col, s.dir, true
}

// Reset unsets every column.
func (s *SortState) Reset() {
	*s = SortState{}
}

// Comparator compares two cells. It is not safe for concurrent use because
// the underlying collator keeps scratch buffers.
type Comparator struct {
	collator *collate.Collator
}

// NewComparator returns a comparator collating strings for the root locale.
func NewComparator() *Comparator {
	return &Comparator{collator: collate.New(language.Und)}
}

// Compare returns a negative number when a sorts before b, zero when they
// are equal, and a positive number otherwise.
func (c *Comparator) Compare(a, b string) int {
	if na, ok := ParseNumber(a); ok {
		if nb, ok := ParseNumber(b); ok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}
	return c.collator.CompareString(a, b)
}

// SortRows sorts rows in place by col in direction dir. The sort is stable,
// so rows with equal keys keep their filtered order. Unset leaves rows as is.
func SortRows(rows []Row, col int, dir Direction) {
	if dir == Unset {
		return
	}
	cmp := NewComparator()
	sign := dir.sign()
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := rows[i].Cell(col)
		b, _ := rows[j].Cell(col)
		return cmp.Compare(a, b)*sign < 0
	})
}
