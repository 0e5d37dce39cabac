package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Database drivers. SQLite is the development default, Postgres the
	// production option.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// OpenOptions holds connection pool settings.
type OpenOptions struct {
	Driver          string // sqlite or postgres
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open opens a database connection and verifies it with a ping.
func Open(ctx context.Context, opts OpenOptions) (*sql.DB, error) {
	driver := opts.Driver
	if driver == "sqlite" {
		driver = "sqlite3"
	}

	db, err := sql.Open(driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Schema is the bootstrap DDL for the FleetForge tables. The column types
// are the portable subset accepted by both SQLite and Postgres.
const Schema = `
CREATE TABLE IF NOT EXISTS vehicles (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	make TEXT NOT NULL,
	model TEXT NOT NULL,
	year INTEGER NOT NULL DEFAULT 0,
	registration TEXT NOT NULL DEFAULT '',
	class TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS specifications (
	id TEXT PRIMARY KEY,
	vehicle_id TEXT NOT NULL REFERENCES vehicles(id),
	engine_type TEXT,
	displacement TEXT,
	power TEXT,
	torque TEXT,
	compression TEXT,
	bore_stroke TEXT,
	fuel_system TEXT,
	cooling TEXT,
	gearbox TEXT,
	transmission TEXT,
	clutch TEXT,
	frame TEXT,
	front_suspension TEXT,
	rear_suspension TEXT,
	front_brakes TEXT,
	rear_brakes TEXT,
	front_tyre TEXT,
	rear_tyre TEXT,
	front_wheel_travel TEXT,
	rear_wheel_travel TEXT,
	wheelbase TEXT,
	seat_height TEXT,
	ground_clearance TEXT,
	dry_weight TEXT,
	wet_weight TEXT,
	fuel_capacity TEXT,
	top_speed TEXT,
	additional_info TEXT NOT NULL DEFAULT '{}',
	scraped_at TIMESTAMP NOT NULL,
	source_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_specifications_vehicle ON specifications(vehicle_id);
`

// Bootstrap creates the schema if it does not exist.
func Bootstrap(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	return nil
}
