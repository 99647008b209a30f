package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/deppfellow/oracle-automation/internal/database"
)

// ErrWorkflowNotFound carries the "table:" prefix sqlerr uses to name the
// missing entity in the 404 message.
var ErrWorkflowNotFound = fmt.Errorf("table:workflows: %w", sql.ErrNoRows)

type WorkflowRepository struct {
	byStatus     string
	byPeriod     string
	updateStatus string
}

// NewWorkflowRepository prepares the statements for <schema>.workflows.
// schema must already be validated as a plain identifier.
func NewWorkflowRepository(schema string) *WorkflowRepository {
	table := schema + ".workflows"

	return &WorkflowRepository{
		byStatus: fmt.Sprintf(`SELECT * FROM %s WHERE status = :status`, table),
		byPeriod: fmt.Sprintf(`SELECT * FROM %s
			WHERE created_at >= :period_start AND created_at < :period_end
			ORDER BY created_at`, table),
		updateStatus: fmt.Sprintf(`UPDATE %s
			SET status = :status, updated_at = CURRENT_TIMESTAMP
			WHERE id = :id`, table),
	}
}

type statusParams struct {
	Status string `db:"status"`
}

type periodParams struct {
	Start time.Time `db:"period_start"`
	End   time.Time `db:"period_end"`
}

type updateStatusParams struct {
	ID     int64  `db:"id"`
	Status string `db:"status"`
}

// ByStatus returns every workflow in status.
func (r *WorkflowRepository) ByStatus(ctx context.Context, q Querier, status string) ([]database.Row, error) {
	rows, err := q.Query(ctx, r.byStatus, statusParams{Status: status})
	if err != nil {
		return nil, fmt.Errorf("querying workflows by status: %w", err)
	}
	return rows, nil
}

// ByPeriod returns the workflows created in the given calendar month (UTC),
// oldest first.
func (r *WorkflowRepository) ByPeriod(ctx context.Context, q Querier, month time.Month, year int) ([]database.Row, error) {
	start, end := PeriodBounds(month, year)

	rows, err := q.Query(ctx, r.byPeriod, periodParams{Start: start, End: end})
	if err != nil {
		return nil, fmt.Errorf("querying workflows by period: %w", err)
	}
	return rows, nil
}

// UpdateStatus moves one workflow to status. The change is only visible
// to others once the caller commits.
func (r *WorkflowRepository) UpdateStatus(ctx context.Context, q Querier, id int64, status string) error {
	affected, err := q.Exec(ctx, r.updateStatus, updateStatusParams{ID: id, Status: status})
	if err != nil {
		return fmt.Errorf("updating workflow %d: %w", id, err)
	}
	if affected == 0 {
		return ErrWorkflowNotFound
	}
	return nil
}

// PeriodBounds returns the half-open [start, end) range of a month in UTC.
func PeriodBounds(month time.Month, year int) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
