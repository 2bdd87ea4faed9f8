package repository

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB creates and initializes a SQLite database
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Create tables
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
	-- Configured biometric terminals
	CREATE TABLE IF NOT EXISTS devices (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		port INTEGER NOT NULL,
		timeout_seconds INTEGER NOT NULL DEFAULT 30,
		model TEXT NOT NULL DEFAULT 'other',
		comm_key INTEGER NOT NULL DEFAULT 0,
		last_sync_at DATETIME,
		status TEXT NOT NULL DEFAULT 'disconnected',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(address, port)
	);

	-- Employees, keyed by the id the terminal assigns
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		device_user_id TEXT UNIQUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_employees_device_user_id ON employees(device_user_id);

	-- Append-only punch log; the unique pair is the dedup key
	CREATE TABLE IF NOT EXISTS attendance_events (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		device_user_id TEXT NOT NULL,
		status INTEGER NOT NULL,
		direction INTEGER NOT NULL,
		punched_at DATETIME NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		UNIQUE(device_user_id, punched_at)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_events_employee_id ON attendance_events(employee_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_events_punched_at ON attendance_events(punched_at);

	-- Check-in/check-out pairs; at most one open row per employee
	CREATE TABLE IF NOT EXISTS attendance_sessions (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		check_in DATETIME NOT NULL,
		check_out DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_sessions_open
		ON attendance_sessions(employee_id) WHERE check_out IS NULL;
	CREATE INDEX IF NOT EXISTS idx_attendance_sessions_employee_id ON attendance_sessions(employee_id);
	`

	_, err := db.Exec(schema)
	return err
}
