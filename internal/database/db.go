// Package database persists assessment history. The scoring engine itself
// never touches storage; records are written by the transport layer after an
// assessment is composed.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the database connection with pooling
type DB struct {
	*sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewDB creates a new SQLite database under dataDir
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "change_impact_forecaster.db")

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &DB{
		DB:           db,
		maxOpenConns: 25,
		maxIdleConns: 5,
		maxLifetime:  5 * time.Minute,
	}

	db.SetMaxOpenConns(database.maxOpenConns)
	db.SetMaxIdleConns(database.maxIdleConns)
	db.SetConnMaxLifetime(database.maxLifetime)

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Database initialized",
		"path", dbPath,
		"max_open_conns", database.maxOpenConns,
		"max_idle_conns", database.maxIdleConns)

	return database, nil
}

// migrate creates the necessary tables
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			change_id TEXT NOT NULL,
			environment TEXT,
			change_type TEXT,
			score INTEGER NOT NULL,
			level TEXT NOT NULL,
			blast_radius_count INTEGER NOT NULL,
			blast_radius_class TEXT NOT NULL,
			request_json TEXT NOT NULL,
			result_json TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_assessments_change_id ON assessments(change_id)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_level ON assessments(level)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// GetPoolStats returns connection pool statistics
func (db *DB) GetPoolStats() map[string]interface{} {
	stats := db.DB.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": db.maxOpenConns,
		"max_idle_connections": db.maxIdleConns,
		"max_lifetime_seconds": db.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}
