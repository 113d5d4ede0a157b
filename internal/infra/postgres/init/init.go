package infra_pg_init

import (
	"context"
	"fmt"
	"log"

	"github.com/humanbelnik/penaltydraw/internal/config"
	infra_migrations "github.com/humanbelnik/penaltydraw/internal/infra/migrations"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func DSN(cfg config.Postgres) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}

func MustEstablishConn(cfg config.Postgres) *sqlx.DB {
	db, err := sqlx.Connect("postgres", DSN(cfg))
	if err != nil {
		log.Fatal(err)
	}

	if err := infra_migrations.Up(context.Background(), db.DB, "postgres"); err != nil {
		log.Fatal(err)
	}

	return db
}
