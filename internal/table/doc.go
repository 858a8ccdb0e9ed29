// Package table is the in-memory tabular data engine behind the viewer.
//
// It has no knowledge of HTTP, sessions, or rendering. Everything here is a
// pure function over strings, which keeps the engine trivially testable:
//
//   - Parsing: [ParseSimple], [ParseQuoted] and [ParseWorkbook] turn raw input
//     into a [Dataset] (header row followed by data rows).
//   - Filtering: [FilterGlobal], [FilterColumn] and [FilterSet.Apply] derive a
//     filtered view from the data rows.
//   - Sorting: [SortState.Toggle] plus [SortRows] reorder a view by one column
//     with numeric-aware comparison.
//   - Aggregates: [Aggregate] computes count or sum over one column of a view.
//   - Projection: [Project] combines header and view for display.
//
// # Absent cells
//
// Rows may be shorter than the header. An index past the end of a row is
// absent, which is different from a cell holding the empty string. Absent
// cells never match a column filter, sort as "", and are skipped by
// aggregates.
package table
