package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/oracle-automation/internal/config"
	"github.com/deppfellow/oracle-automation/internal/database"
)

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	cfg := &config.Config{
		Primary:       config.Primary{Env: "test"},
		Server:        config.ServerConfig{Port: "0", ReadTimeout: 1, WriteTimeout: 1, IdleTimeout: 1},
		Database:      config.DatabaseConfig{Dialect: config.DialectOracle, Schema: "X_OWNER"},
		Observability: config.DefaultObservabilityConfig(),
	}
	log := zerolog.Nop()
	db := database.NewFromDB(sqlx.NewDb(mockDB, "sqlmock"), cfg.Database.Dialect, &log)

	return NewWithDatabase(cfg, &log, nil, db), mock
}

func TestNewWithDatabase(t *testing.T) {
	s, _ := newTestServer(t)

	assert.NotNil(t, s.UnitOfWork)
	assert.Nil(t, s.LoggerService.GetApplication())
}

func TestStartWithoutSetup(t *testing.T) {
	s, _ := newTestServer(t)

	assert.EqualError(t, s.Start(), "HTTP server not initialized")
}

func TestShutdownClosesPool(t *testing.T) {
	s, mock := newTestServer(t)
	s.SetupHTTPServer(http.NewServeMux())

	mock.ExpectClose()
	require.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
