// Package database handles storage connection management and migration
// execution using goose. Connect returns a ready-to-use *sql.DB pool for
// either PostgreSQL (pgx) or SQLite, and Migrate applies the embedded schema
// for the matching dialect.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"path"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"rare/internal/config"
)

//go:embed migrations
var embedMigrations embed.FS

// sqlDriverName maps a configured driver to the database/sql driver name.
func sqlDriverName(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres:
		return "pgx", nil
	case config.DriverSQLite:
		return "sqlite3", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// Connect opens a connection pool for the given driver and DSN.
// It verifies the connection with a ping before returning.
func Connect(driver, dsn string) (*sql.DB, error) {
	name, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	if driver == config.DriverSQLite {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY
		// and keeps shared in-memory databases alive.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}

// Migrate runs all pending goose migrations for the driver's dialect from
// the embedded SQL files.
func Migrate(db *sql.DB, driver string) error {
	goose.SetBaseFS(embedMigrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, path.Join("migrations", driver)); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied", "dialect", driver)
	return nil
}
