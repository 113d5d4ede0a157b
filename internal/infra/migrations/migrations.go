package infra_migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedMigrations embed.FS

// Up applies every pending migration of the given dialect ("postgres" or "sqlite").
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	var gooseDialect goose.Dialect
	switch dialect {
	case "postgres":
		gooseDialect = goose.DialectPostgres
	case "sqlite":
		gooseDialect = goose.DialectSQLite3
	default:
		return fmt.Errorf("unsupported migration dialect %q", dialect)
	}

	fsys, err := fs.Sub(embedMigrations, dialect)
	if err != nil {
		return fmt.Errorf("open %s migrations: %w", dialect, err)
	}

	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply %s migrations: %w", dialect, err)
	}
	return nil
}
