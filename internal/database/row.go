package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Row is one result row keyed by column name. Rows are built fresh per
// query and belong to the caller.
type Row map[string]any

// scanRows drains rows into Row values. The result is never nil so an empty
// result serialises as [].
func scanRows(rows *sqlx.Rows) ([]Row, error) {
	result := make([]Row, 0)

	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(Row, len(raw))
		for column, value := range raw {
			row[NormalizeColumn(column)] = normalizeValue(value)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return result, nil
}

// NormalizeColumn lower-cases names the database reports fully upper-cased
// (Oracle's case-insensitive identifiers). Mixed-case names were quoted on
// purpose and are kept.
func NormalizeColumn(name string) string {
	if name == strings.ToUpper(name) {
		return strings.ToLower(name)
	}
	return name
}

func normalizeValue(value any) any {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return value
}
