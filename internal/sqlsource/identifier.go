package sqlsource

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5"
)

// ErrInvalidTable is returned for table names that cannot be quoted safely.
var ErrInvalidTable = errors.New("invalid table name")

// splitTableName splits "schema.table" into its parts. At most two parts are
// allowed and none may be empty or contain control characters.
func splitTableName(name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTable)
	}
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, name)
	}
	for _, p := range parts {
		if p == "" || strings.IndexFunc(p, unicode.IsControl) >= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTable, name)
		}
	}
	return parts, nil
}

// quoteTable returns the table reference quoted for engine.
func quoteTable(engine Engine, name string) (string, error) {
	parts, err := splitTableName(name)
	if err != nil {
		return "", err
	}

	switch engine {
	case EngineMySQL:
		quoted := make([]string, len(parts))
		for i, p := range parts {
			quoted[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
		}
		return strings.Join(quoted, "."), nil
	default:
		// Postgres and SQLite share double-quoted identifiers.
		return pgx.Identifier(parts).Sanitize(), nil
	}
}
