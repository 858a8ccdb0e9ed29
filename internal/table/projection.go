package table

// Project combines the header and the filtered, sorted view into the rows
// the rendering surface draws verbatim: header first, then one entry per
// view row in order. It returns nil when there is no header.
func Project(header Row, view []Row) [][]string {
	if header == nil {
		return nil
	}
	out := make([][]string, 0, len(view)+1)
	out = append(out, header)
	for _, r := range view {
		out = append(out, r)
	}
	return out
}
