package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

var (
	// ErrSessionClosed is returned by any session call made after Close.
	ErrSessionClosed = errors.New("database: session is closed")

	// ErrPoolTimeout is returned when no pooled connection became free
	// within the configured pool timeout.
	ErrPoolTimeout = errors.New("database: timed out waiting for a pooled connection")
)

// SessionFactory hands out pooled connections. *sqlx.DB satisfies it.
type SessionFactory interface {
	Connx(ctx context.Context) (*sqlx.Conn, error)
}

// UnitOfWorkConfig tunes a UnitOfWork. Zero values disable the feature.
type UnitOfWorkConfig struct {
	// PoolTimeout bounds the wait for a free pooled connection.
	PoolTimeout time.Duration

	// SlowQueryThreshold promotes statement logs from debug to warn.
	SlowQueryThreshold time.Duration

	// Product names the datastore in New Relic segments.
	Product newrelic.DatastoreProduct

	// TxOptions are passed to every transaction the sessions open.
	TxOptions *sql.TxOptions
}

// UnitOfWork scopes a group of statements so they commit or roll back
// together. It holds no connection itself; every Begin yields a fresh
// Session.
type UnitOfWork struct {
	factory SessionFactory
	log     *zerolog.Logger
	cfg     UnitOfWorkConfig
}

// NewUnitOfWork builds a UnitOfWork over factory. A nil logger discards
// statement logs.
func NewUnitOfWork(factory SessionFactory, logger *zerolog.Logger, cfg UnitOfWorkConfig) *UnitOfWork {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &UnitOfWork{
		factory: factory,
		log:     logger,
		cfg:     cfg,
	}
}

// Begin enters the scope and returns a Session bound to ctx. No connection
// is taken until the first statement runs. Callers must Close the session.
func (u *UnitOfWork) Begin(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Session{uow: u, ctx: ctx}, nil
}

// Do runs fn inside a session and always closes it afterwards, rolling back
// anything fn did not commit. A panic in fn still releases the session
// before it propagates. fn's error takes precedence over the close error.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s *Session) error) (err error) {
	session, err := u.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = session.Close()
			panic(p)
		}
		if closeErr := session.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(ctx, session)
}

// Session is one borrowed connection with at most one open transaction.
//
// The first statement acquires a connection and begins a transaction;
// Commit and Rollback end it and hand the connection back, and the next
// statement begins a new one. A Session is not safe for concurrent use.
type Session struct {
	uow    *UnitOfWork
	ctx    context.Context
	conn   *sqlx.Conn
	tx     *sqlx.Tx
	closed bool
}

// InTransaction reports whether a transaction is open.
func (s *Session) InTransaction() bool {
	return s.tx != nil
}

// begin acquires a connection and opens a transaction unless one is open.
// The transaction lives on the scope ctx, not on the statement ctx.
func (s *Session) begin() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx != nil {
		return nil
	}

	acquireCtx := s.ctx
	if s.uow.cfg.PoolTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(s.ctx, s.uow.cfg.PoolTimeout)
		defer cancel()
	}

	conn, err := s.uow.factory.Connx(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && s.ctx.Err() == nil {
			return fmt.Errorf("%w (%s)", ErrPoolTimeout, s.uow.cfg.PoolTimeout)
		}
		return fmt.Errorf("acquiring connection: %w", err)
	}

	tx, err := conn.BeginTxx(s.ctx, s.uow.cfg.TxOptions)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("beginning transaction: %w", err)
	}

	s.conn = conn
	s.tx = tx
	s.uow.log.Debug().Msg("transaction started")
	return nil
}

// release returns the connection to the pool.
func (s *Session) release() {
	s.tx = nil
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.uow.log.Warn().Err(err).Msg("failed to release connection")
		}
		s.conn = nil
	}
}

// Query runs a SELECT with :name parameters taken from arg (a map or a
// struct with db tags) and returns every row as a Row.
func (s *Session) Query(ctx context.Context, query string, arg any) ([]Row, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}

	finish := s.observe(ctx, query)

	var (
		rows *sqlx.Rows
		err  error
	)
	if arg == nil {
		rows, err = s.tx.QueryxContext(ctx, query)
	} else {
		rows, err = sqlx.NamedQueryContext(ctx, s.tx, query, arg)
	}
	if err != nil {
		finish(err)
		return nil, err
	}
	defer rows.Close()

	result, err := scanRows(rows)
	finish(err)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Exec runs a statement with :name parameters and returns the number of
// affected rows.
func (s *Session) Exec(ctx context.Context, query string, arg any) (int64, error) {
	if err := s.begin(); err != nil {
		return 0, err
	}

	finish := s.observe(ctx, query)

	var (
		res sql.Result
		err error
	)
	if arg == nil {
		res, err = s.tx.ExecContext(ctx, query)
	} else {
		res, err = s.tx.NamedExecContext(ctx, query, arg)
	}
	if err != nil {
		finish(err)
		return 0, err
	}

	affected, err := res.RowsAffected()
	finish(err)
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}

	return affected, nil
}

// Commit commits the open transaction, if any, and releases the connection.
func (s *Session) Commit() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return nil
	}

	err := s.tx.Commit()
	s.release()
	if err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.uow.log.Debug().Msg("transaction committed")
	return nil
}

// Rollback discards the open transaction, if any, and releases the
// connection.
func (s *Session) Rollback() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return nil
	}

	err := s.tx.Rollback()
	s.release()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rolling back transaction: %w", err)
	}

	s.uow.log.Debug().Msg("transaction rolled back")
	return nil
}

// Close rolls back uncommitted work and releases the session. Calling it
// again is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	err := s.Rollback()
	s.closed = true
	return err
}

// observe times one statement, records it as a New Relic datastore
// segment when the ctx carries a transaction, and logs it on completion.
func (s *Session) observe(ctx context.Context, query string) func(err error) {
	start := time.Now()
	operation := statementOperation(query)

	var segment *newrelic.DatastoreSegment
	if txn := newrelic.FromContext(ctx); txn != nil {
		segment = &newrelic.DatastoreSegment{
			StartTime:          txn.StartSegmentNow(),
			Product:            s.uow.cfg.Product,
			Operation:          operation,
			ParameterizedQuery: query,
		}
	}

	return func(err error) {
		if segment != nil {
			segment.End()
		}

		elapsed := time.Since(start)
		event := s.uow.log.Debug()
		if threshold := s.uow.cfg.SlowQueryThreshold; threshold > 0 && elapsed >= threshold {
			event = s.uow.log.Warn().Bool("slow", true)
		}
		if err != nil {
			event = s.uow.log.Error().Err(err)
		}

		event.
			Str("operation", operation).
			Str("query", compactQuery(query)).
			Dur("duration", elapsed).
			Msg("statement executed")
	}
}

// statementOperation returns the upper-cased leading keyword.
func statementOperation(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// compactQuery collapses whitespace so multi-line SQL logs on one line.
func compactQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
