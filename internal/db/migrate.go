package db

import (
	"context"
	"fmt"

	"ahorra/internal/db/migrations"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

var gooseUpContext = func(ctx context.Context, conn *sqlx.DB, dir string) error {
	return goose.UpContext(ctx, conn.DB, dir)
}

// Migrate applies the embedded schema for the connection's driver.
func Migrate(ctx context.Context, conn *sqlx.DB, logger goose.Logger) error {
	dialect, dir, err := migrationTarget(conn.DriverName())
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrations.FS)
	if logger != nil {
		goose.SetLogger(logger)
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return gooseUpContext(ctx, conn, dir)
}

func migrationTarget(driver string) (string, string, error) {
	switch driver {
	case DriverSQLite:
		return "sqlite3", "sqlite", nil
	case DriverPostgres:
		return "postgres", "postgres", nil
	default:
		return "", "", fmt.Errorf("no migrations for driver %q", driver)
	}
}
