package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

// ImportTable reads up to limit rows of the named table. The first row of the
// result holds the column names; NULL becomes "" and every other value its
// text representation. A non-positive limit, or one above the configured
// row limit, is replaced by the configured row limit.
func (s *Source) ImportTable(ctx context.Context, name string, limit int) ([][]string, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 || limit > s.rowLimit {
		limit = s.rowLimit
	}

	ref, err := quoteTable(s.engine, name)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	var grid [][]string
	if s.pool != nil {
		grid, err = s.importPostgres(ctx, ref, limit)
	} else {
		grid, err = s.importSQL(ctx, ref, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", name, err)
	}

	slog.Info("table imported",
		"engine", string(s.engine),
		"table", name,
		"rows", len(grid)-1,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return grid, nil
}

// importPostgres uses the simple protocol so every value arrives in its text
// format, which is exactly what the grid holds.
func (s *Source) importPostgres(ctx context.Context, ref string, limit int) ([][]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT * FROM "+ref+" LIMIT $1", pgx.QueryExecModeSimpleProtocol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, fd := range fields {
		header[i] = fd.Name
	}

	grid := [][]string{header}
	for rows.Next() {
		raw := rows.RawValues()
		row := make([]string, len(raw))
		for i, v := range raw {
			if v != nil {
				row[i] = string(v)
			}
		}
		grid = append(grid, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grid, nil
}

func (s *Source) importSQL(ctx context.Context, ref string, limit int) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+ref+" LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	grid := [][]string{columns}
	for rows.Next() {
		vals := make([]sql.NullString, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make([]string, len(columns))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			}
		}
		grid = append(grid, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return grid, nil
}
