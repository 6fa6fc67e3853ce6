// Package database applies the catalog cache's schema migrations
// using pressly/goose/v3, and opens the pgx-backed *sqlx.DB the rest
// of the pipeline depends on.
package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	dserrors "github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Open connects to dsn via pgx and runs any pending migrations in
// migrations/ against it before returning the handle.
func Open(dsn string) (*sqlx.DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, dserrors.FailedToWithDetails("open catalog database", "database", "pgx", err)
	}

	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return nil, dserrors.FailedToWithDetails("apply catalog migrations", "database", "goose", err)
	}

	return sqlx.NewDb(sqlDB, "pgx"), nil
}
