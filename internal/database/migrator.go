package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"

	"github.com/deppfellow/oracle-automation/internal/config"
)

// ErrMigrationsUnsupported is returned by Migrate for dialects without
// embedded migrations. The Oracle schema is owned by the DBA team.
var ErrMigrationsUnsupported = errors.New("database: migrations are only available for the postgres dialect")

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded tern migrations over a single pgx
// connection. The migrations create <schema>.workflows, which makes a local
// postgres usable in place of the Oracle instance.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	if cfg.Database.Dialect != config.DialectPostgres {
		return ErrMigrationsUnsupported
	}

	conn, err := pgx.Connect(ctx, ConnectionURL(cfg.Database))
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}
	m.Data = map[string]any{"schema": cfg.Database.Schema}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	if from == int32(len(m.Migrations)) {
		logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}
