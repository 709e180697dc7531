package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"

	"github.com/deppfellow/post-api/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const schemaVersionTable = "schema_version"

// Migrate brings the posts schema up to the latest embedded migration over
// a dedicated connection. A database ahead of the binary is an error.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	conn, err := pgx.Connect(ctx, DSN(cfg.Database))
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := newMigrator(ctx, conn, logger)
	if err != nil {
		return err
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	latest := int32(len(m.Migrations))

	switch {
	case from == latest:
		logger.Info().Int32("version", latest).Msg("database schema up to date")
		return nil
	case from > latest:
		return fmt.Errorf("database schema version %d is ahead of the %d embedded migrations", from, latest)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database schema from version %d: %w", from, err)
	}

	logger.Info().Int32("from", from).Int32("to", latest).Msg("migrated database schema")
	return nil
}

// newMigrator loads the embedded migrations into a tern migrator that logs
// each step. conn may be nil to inspect the migrations without a database.
func newMigrator(ctx context.Context, conn *pgx.Conn, logger *zerolog.Logger) (*tern.Migrator, error) {
	m, err := tern.NewMigrator(ctx, conn, schemaVersionTable)
	if err != nil {
		return nil, fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return nil, fmt.Errorf("loading database migrations: %w", err)
	}

	m.OnStart = func(sequence int32, name, direction, _ string) {
		logger.Info().
			Int32("sequence", sequence).
			Str("migration", name).
			Str("direction", direction).
			Msg("applying migration")
	}

	return m, nil
}
