package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (and creates if needed) the SQLite database at path and
// ensures required tables exist.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(pctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	db.SetMaxOpenConns(1)

	if err := bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cities (
			id         TEXT PRIMARY KEY,
			position   INTEGER NOT NULL,
			name       TEXT NOT NULL,
			state      TEXT NOT NULL,
			aqi        INTEGER NOT NULL,
			lat        REAL NOT NULL,
			lng        REAL NOT NULL,
			population TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS cities_name_idx ON cities(lower(name));`,
		`CREATE TABLE IF NOT EXISTS zone_readings (
			id             TEXT PRIMARY KEY,
			batch_id       TEXT NOT NULL,
			city_id        TEXT NOT NULL REFERENCES cities(id),
			zone_id        TEXT NOT NULL,
			position       INTEGER NOT NULL,
			name           TEXT NOT NULL,
			aqi            INTEGER NOT NULL,
			trend          TEXT NOT NULL,
			main_pollutant TEXT NOT NULL,
			reliability    INTEGER NOT NULL,
			lat            REAL NOT NULL,
			lng            REAL NOT NULL,
			recorded_at    TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS zone_readings_city_idx ON zone_readings(city_id, recorded_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap sqlite: %w", err)
		}
	}
	return nil
}
