// Package sqlite implements the repository collaborators on an embedded
// sqlite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the booking engine.
type DB struct {
	*sql.DB
}

// Open opens the database at path and runs migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS barbershops (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT,
			phone TEXT,
			rating REAL DEFAULT 0,
			rating_count INTEGER DEFAULT 0,
			distance_km REAL DEFAULT 0,
			travel_time_min INTEGER DEFAULT 0,
			network_id TEXT,
			owner_admin_id TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS services (
			id TEXT PRIMARY KEY,
			barbershop_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL DEFAULT 'other',
			price_cents INTEGER NOT NULL DEFAULT 0,
			duration_min INTEGER NOT NULL DEFAULT 30,
			FOREIGN KEY (barbershop_id) REFERENCES barbershops(id)
		)`,

		`CREATE TABLE IF NOT EXISTS barbers (
			id TEXT PRIMARY KEY,
			barbershop_id TEXT NOT NULL,
			name TEXT NOT NULL,
			specialties TEXT,
			rating REAL DEFAULT 0,
			rating_count INTEGER DEFAULT 0,
			available BOOLEAN NOT NULL DEFAULT 1,
			FOREIGN KEY (barbershop_id) REFERENCES barbershops(id)
		)`,

		`CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			client_id TEXT,
			client_name TEXT,
			barber_id TEXT NOT NULL,
			service_id TEXT NOT NULL,
			service_name TEXT,
			barbershop_id TEXT NOT NULL,
			start_time DATETIME NOT NULL,
			duration_min INTEGER NOT NULL,
			total_cents INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'scheduled',
			notes TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (barbershop_id) REFERENCES barbershops(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_appointments_shop_start
			ON appointments(barbershop_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_barber_start
			ON appointments(barber_id, start_time)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// PingContext checks database liveness for the readiness probe.
func (db *DB) PingContext(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}
