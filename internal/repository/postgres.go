package repository

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// NewPostgresDB creates and initializes a PostgreSQL database connection
func NewPostgresDB(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Create tables
	if err := createPostgresTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createPostgresTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS devices (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		port INTEGER NOT NULL,
		timeout_seconds INTEGER NOT NULL DEFAULT 30,
		model TEXT NOT NULL DEFAULT 'other',
		comm_key INTEGER NOT NULL DEFAULT 0,
		last_sync_at TIMESTAMP,
		status TEXT NOT NULL DEFAULT 'disconnected',
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(address, port)
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		device_user_id TEXT UNIQUE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_employees_device_user_id ON employees(device_user_id);

	CREATE TABLE IF NOT EXISTS attendance_events (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		device_user_id TEXT NOT NULL,
		status INTEGER NOT NULL,
		direction INTEGER NOT NULL,
		punched_at TIMESTAMP NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		UNIQUE(device_user_id, punched_at)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_events_employee_id ON attendance_events(employee_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_events_punched_at ON attendance_events(punched_at);

	CREATE TABLE IF NOT EXISTS attendance_sessions (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		check_in TIMESTAMP NOT NULL,
		check_out TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_sessions_open
		ON attendance_sessions(employee_id) WHERE check_out IS NULL;
	CREATE INDEX IF NOT EXISTS idx_attendance_sessions_employee_id ON attendance_sessions(employee_id);
	`

	_, err := db.Exec(schema)
	return err
}
