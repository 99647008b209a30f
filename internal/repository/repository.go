// Package repository holds the SQL for the workflow table.
//
// Repositories do not open sessions. Every method runs on the Querier it
// is given, normally the *database.Session of the caller's Unit of Work,
// so the caller decides what is committed together.
package repository

import (
	"context"

	"github.com/deppfellow/oracle-automation/internal/database"
)

// Querier is the part of *database.Session repositories need.
type Querier interface {
	Query(ctx context.Context, query string, arg any) ([]database.Row, error)
	Exec(ctx context.Context, query string, arg any) (int64, error)
}
