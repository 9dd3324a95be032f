package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode for better concurrency
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Migrate creates the schema if it does not exist yet.
// Statements are idempotent so Migrate is safe to run on every start.
func (db *DB) Migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ranking_snapshots (
			snapshot_id TEXT PRIMARY KEY,
			philosophy TEXT NOT NULL,
			created_at TEXT NOT NULL,
			company_count INTEGER NOT NULL,
			document TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_philosophy ON ranking_snapshots(philosophy)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON ranking_snapshots(created_at)`,
		`CREATE TABLE IF NOT EXISTS backtest_results (
			id TEXT PRIMARY KEY,
			snapshot_id TEXT NOT NULL,
			philosophy TEXT NOT NULL,
			horizon_months INTEGER NOT NULL,
			status TEXT NOT NULL,
			validated_at TEXT NOT NULL,
			fetched_count INTEGER NOT NULL,
			total_count INTEGER NOT NULL,
			benchmark_return REAL,
			benchmark_source TEXT,
			document TEXT NOT NULL,
			UNIQUE(snapshot_id, horizon_months),
			FOREIGN KEY(snapshot_id) REFERENCES ranking_snapshots(snapshot_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backtest_philosophy ON backtest_results(philosophy)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Begin starts a new transaction
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}

// Exec executes a query without returning rows
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query executes a query that returns rows
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}
