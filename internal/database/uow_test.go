package database

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	selectByStatus = "SELECT * FROM X_OWNER.workflows WHERE status = :status"
	updateStatus   = "UPDATE X_OWNER.workflows SET status = :status WHERE id = :id"
)

// q turns a named statement into the regexp sqlmock sees after sqlx has
// rebound it to '?' placeholders.
func q(query string) string {
	compiled, _, err := sqlx.Named(query, map[string]any{"status": "", "id": 0})
	if err != nil {
		panic(err)
	}
	return regexp.QuoteMeta(compiled)
}

func newMockUnitOfWork(t *testing.T, cfg UnitOfWorkConfig) (*UnitOfWork, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return NewUnitOfWork(sqlx.NewDb(mockDB, "sqlmock"), nil, cfg), mock
}

func TestUnitOfWork_RollsBackWithoutCommit(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, UnitOfWorkConfig{})

	mock.ExpectBegin()
	mock.ExpectExec(q(updateStatus)).
		WithArgs("CANCELLED", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(ctx context.Context, s *Session) error {
		affected, err := s.Exec(ctx, updateStatus, map[string]any{"status": "CANCELLED", "id": 7})
		assert.EqualValues(t, 1, affected)
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_CommitPersists(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, UnitOfWorkConfig{})

	mock.ExpectBegin()
	mock.ExpectExec(q(updateStatus)).
		WithArgs("FINISHED", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(ctx context.Context, s *Session) error {
		if _, err := s.Exec(ctx, updateStatus, map[string]any{"status": "FINISHED", "id": 7}); err != nil {
			return err
		}
		return s.Commit()
	})

	require.NoError(t, err)
	// No rollback expectation: closing after commit must not touch the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_UnusedSessionNeverConnects(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, UnitOfWorkConfig{})

	err := uow.Do(context.Background(), func(ctx context.Context, s *Session) error {
		assert.False(t, s.InTransaction())
		return nil
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_ErrorRollsBackAndPropagates(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, UnitOfWorkConfig{})
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(q(updateStatus)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(ctx context.Context, s *Session) error {
		if _, err := s.Exec(ctx, updateStatus, map[string]any{"status": "X", "id": 1}); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_PanicReleasesSession(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, UnitOfWorkConfig{})

	mock.ExpectBegin()
	mock.ExpectExec(q(updateStatus)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = uow.Do(context.Background(), func(ctx context.Context, s *Session) error {
			_, _ = s.Exec(ctx, updateStatus, map[string]any{"status": "X", "id": 1})
			panic("kaboom")
		})
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_QueryReturnsRows(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, UnitOfWorkConfig{})

	rows := sqlmock.NewRows([]string{"ID", "NAME", "STATUS", "CreatedBy"}).
		AddRow(int64(1), []byte("nightly-load"), "FINISHED", "etl").
		AddRow(int64(2), []byte("month-close"), "FINISHED", nil)

	mock.ExpectBegin()
	mock.ExpectQuery(q(selectByStatus)).WithArgs("FINISHED").WillReturnRows(rows)
	mock.ExpectRollback()

	var got []Row
	err := uow.Do(context.Background(), func(ctx context.Context, s *Session) error {
		var err error
		got, err = s.Query(ctx, selectByStatus, map[string]any{"status": "FINISHED"})
		return err
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.EqualValues(t, 1, got[0]["id"])
	assert.Equal(t, "nightly-load", got[0]["name"])
	assert.Equal(t, "FINISHED", got[0]["status"])
	assert.Equal(t, "etl", got[0]["CreatedBy"])
	assert.Nil(t, got[1]["CreatedBy"])
	assert.NotContains(t, got[0], "ID")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_QueryEmptyResultIsNotNil(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, UnitOfWorkConfig{})

	mock.ExpectBegin()
	mock.ExpectQuery(q(selectByStatus)).WithArgs("RUNNING").
		WillReturnRows(sqlmock.NewRows([]string{"ID"}))
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(ctx context.Context, s *Session) error {
		got, err := s.Query(ctx, selectByStatus, map[string]any{"status": "RUNNING"})
		assert.NotNil(t, got)
		assert.Empty(t, got)
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_QueryWithoutArgs(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, UnitOfWorkConfig{})

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM dual")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(ctx context.Context, s *Session) error {
		got, err := s.Query(ctx, "SELECT 1 FROM dual", nil)
		assert.Len(t, got, 1)
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_CommitThenAutobegin(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, UnitOfWorkConfig{})

	mock.ExpectBegin()
	mock.ExpectExec(q(updateStatus)).WithArgs("A", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(q(updateStatus)).WithArgs("B", 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(ctx context.Context, s *Session) error {
		if _, err := s.Exec(ctx, updateStatus, map[string]any{"status": "A", "id": 1}); err != nil {
			return err
		}
		if err := s.Commit(); err != nil {
			return err
		}
		assert.False(t, s.InTransaction())

		// Second statement opens a new transaction which is never committed.
		_, err := s.Exec(ctx, updateStatus, map[string]any{"status": "B", "id": 2})
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_ExplicitRollback(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, UnitOfWorkConfig{})

	mock.ExpectBegin()
	mock.ExpectExec(q(updateStatus)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(ctx context.Context, s *Session) error {
		if _, err := s.Exec(ctx, updateStatus, map[string]any{"status": "A", "id": 1}); err != nil {
			return err
		}
		return s.Rollback()
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_UseAfterClose(t *testing.T) {
	uow, _ := newMockUnitOfWork(t, UnitOfWorkConfig{})
	ctx := context.Background()

	session, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, session.Close())
	require.NoError(t, session.Close())

	_, err = session.Query(ctx, selectByStatus, map[string]any{"status": "FINISHED"})
	assert.ErrorIs(t, err, ErrSessionClosed)

	_, err = session.Exec(ctx, updateStatus, map[string]any{"status": "A", "id": 1})
	assert.ErrorIs(t, err, ErrSessionClosed)

	assert.ErrorIs(t, session.Commit(), ErrSessionClosed)
	assert.ErrorIs(t, session.Rollback(), ErrSessionClosed)
}

func TestSession_StatementErrorStillRollsBack(t *testing.T) {
	uow, mock := newMockUnitOfWork(t, UnitOfWorkConfig{})
	dbErr := errors.New("ORA-00942: table or view does not exist")

	mock.ExpectBegin()
	mock.ExpectQuery(q(selectByStatus)).WillReturnError(dbErr)
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(ctx context.Context, s *Session) error {
		_, err := s.Query(ctx, selectByStatus, map[string]any{"status": "FINISHED"})
		return err
	})

	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_BeginWithCancelledContext(t *testing.T) {
	uow, _ := newMockUnitOfWork(t, UnitOfWorkConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uow.Begin(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// blockingFactory never hands out a connection.
type blockingFactory struct{}

func (blockingFactory) Connx(ctx context.Context) (*sqlx.Conn, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSession_PoolTimeout(t *testing.T) {
	uow := NewUnitOfWork(blockingFactory{}, nil, UnitOfWorkConfig{PoolTimeout: 10 * time.Millisecond})

	err := uow.Do(context.Background(), func(ctx context.Context, s *Session) error {
		_, err := s.Query(ctx, selectByStatus, map[string]any{"status": "FINISHED"})
		return err
	})

	assert.ErrorIs(t, err, ErrPoolTimeout)
}

func TestSession_SlowQueryIsLoggedAtWarn(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	uow := NewUnitOfWork(sqlx.NewDb(mockDB, "sqlmock"), &log, UnitOfWorkConfig{SlowQueryThreshold: time.Nanosecond})

	mock.ExpectBegin()
	mock.ExpectQuery(q(selectByStatus)).
		WillDelayFor(time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"ID"}))
	mock.ExpectRollback()

	err = uow.Do(context.Background(), func(ctx context.Context, s *Session) error {
		_, err := s.Query(ctx, selectByStatus, map[string]any{"status": "FINISHED"})
		return err
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"slow":true`)
	assert.Contains(t, buf.String(), `"operation":"SELECT"`)
}

func TestStatementOperation(t *testing.T) {
	assert.Equal(t, "SELECT", statementOperation("  select * from x"))
	assert.Equal(t, "UPDATE", statementOperation("\n\tUPDATE x SET y = 1"))
	assert.Equal(t, "", statementOperation("   "))
}

func TestNormalizeColumn(t *testing.T) {
	assert.Equal(t, "status", NormalizeColumn("STATUS"))
	assert.Equal(t, "created_at", NormalizeColumn("CREATED_AT"))
	assert.Equal(t, "status", NormalizeColumn("status"))
	assert.Equal(t, "CreatedBy", NormalizeColumn("CreatedBy"))
}
