// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package databasetest opens migrated throwaway databases for tests.
package databasetest

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"rare/internal/config"
	"rare/internal/database"
)

var seq atomic.Int64

// SQLite returns a migrated in-memory SQLite database private to the test.
// The database is closed when the test finishes.
func SQLite(t *testing.T) *sql.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, seq.Add(1))

	db, err := database.Connect(config.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db, config.DriverSQLite); err != nil {
		db.Close()
		t.Fatalf("migrate sqlite: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// Postgres returns a migrated connection to the PostgreSQL instance named
// by the POSTGRES_* environment variables. The test is skipped when the
// server is not reachable.
func Postgres(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "postgres://" + envOr("POSTGRES_USER", "rare") + ":" + envOr("POSTGRES_PASSWORD", "changeme") +
		"@" + envOr("POSTGRES_HOST", "localhost") + ":" + envOr("POSTGRES_PORT", "5432") +
		"/" + envOr("POSTGRES_DB", "rare") + "?sslmode=disable&connect_timeout=2"

	db, err := database.Connect(config.DriverPostgres, dsn)
	if err != nil {
		t.Skipf("skipping: PostgreSQL not reachable: %v", err)
	}
	if err := database.Migrate(db, config.DriverPostgres); err != nil {
		db.Close()
		t.Fatalf("migrate postgres: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
