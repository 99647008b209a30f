package service

import (
	"context"
	"strings"
	"time"

	"github.com/deppfellow/oracle-automation/internal/database"
	"github.com/deppfellow/oracle-automation/internal/errs"
	"github.com/deppfellow/oracle-automation/internal/repository"
	"github.com/deppfellow/oracle-automation/internal/server"
)

type WorkflowService struct {
	server *server.Server
	repo   *repository.WorkflowRepository
}

func NewWorkflowService(s *server.Server, repo *repository.WorkflowRepository) *WorkflowService {
	return &WorkflowService{
		server: s,
		repo:   repo,
	}
}

// ByStatus lists the workflows in status. Reads are never committed; the
// session rolls back on the way out.
func (s *WorkflowService) ByStatus(ctx context.Context, status string) ([]database.Row, error) {
	status, err := normalizeStatus(status)
	if err != nil {
		return nil, err
	}

	var rows []database.Row
	err = s.server.UnitOfWork.Do(ctx, func(ctx context.Context, session *database.Session) error {
		var err error
		rows, err = s.repo.ByStatus(ctx, session, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.server.Logger.Debug().
		Str("status", status).
		Int("count", len(rows)).
		Msg("workflows loaded by status")

	return rows, nil
}

// ByPeriod lists the workflows created in month/year.
func (s *WorkflowService) ByPeriod(ctx context.Context, month, year int) ([]database.Row, error) {
	var fieldErrors []errs.FieldError
	if month < 1 || month > 12 {
		fieldErrors = append(fieldErrors, errs.FieldError{Field: "month", Error: "must be between 1 and 12"})
	}
	if year < 1 {
		fieldErrors = append(fieldErrors, errs.FieldError{Field: "year", Error: "must be a positive year"})
	}
	if len(fieldErrors) > 0 {
		return nil, errs.NewBadRequestError("Validation failed", true, nil, fieldErrors, nil)
	}

	var rows []database.Row
	err := s.server.UnitOfWork.Do(ctx, func(ctx context.Context, session *database.Session) error {
		var err error
		rows, err = s.repo.ByPeriod(ctx, session, time.Month(month), year)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.server.Logger.Debug().
		Int("month", month).
		Int("year", year).
		Int("count", len(rows)).
		Msg("workflows loaded by period")

	return rows, nil
}

// UpdateStatus moves workflow id to status and commits.
func (s *WorkflowService) UpdateStatus(ctx context.Context, id int64, status string) error {
	status, err := normalizeStatus(status)
	if err != nil {
		return err
	}
	if id < 1 {
		return errs.NewBadRequestError("Validation failed", true, nil,
			[]errs.FieldError{{Field: "id", Error: "must be a positive number"}}, nil)
	}

	err = s.server.UnitOfWork.Do(ctx, func(ctx context.Context, session *database.Session) error {
		if err := s.repo.UpdateStatus(ctx, session, id, status); err != nil {
			return err
		}
		return session.Commit()
	})
	if err != nil {
		return err
	}

	s.server.Logger.Info().
		Int64("workflow_id", id).
		Str("status", status).
		Msg("workflow status updated")

	return nil
}

// normalizeStatus trims surrounding blanks. Status values are otherwise
// matched exactly as stored.
func normalizeStatus(status string) (string, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return "", errs.NewBadRequestError("Validation failed", true, nil,
			[]errs.FieldError{{Field: "status", Error: "is required"}}, nil)
	}
	return status, nil
}
