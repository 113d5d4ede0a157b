package infra_sqlite_init

import (
	"context"
	"fmt"
	"log"

	"github.com/humanbelnik/penaltydraw/internal/config"
	infra_migrations "github.com/humanbelnik/penaltydraw/internal/infra/migrations"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

func init() {
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

func DSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}

// Open connects to the database file and applies migrations.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, DSN(path))
	if err != nil {
		return nil, err
	}
	// one writer keeps the conditional draw update serialized
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := infra_migrations.Up(ctx, db.DB, "sqlite"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func MustOpen(cfg config.Store) *sqlx.DB {
	db, err := Open(context.Background(), cfg.SQLitePath)
	if err != nil {
		log.Fatal(err)
	}
	return db
}
