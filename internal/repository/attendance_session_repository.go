package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/attendsync/server/internal/models"
)

// AttendanceSessionRepository implements AttendanceSessionRepo for PostgreSQL/SQLite
type AttendanceSessionRepository struct {
	db *sql.DB
}

// NewAttendanceSessionRepository creates a new AttendanceSessionRepository
func NewAttendanceSessionRepository(db *sql.DB) *AttendanceSessionRepository {
	return &AttendanceSessionRepository{db: db}
}

func scanSession(row interface{ Scan(...interface{}) error }) (*models.AttendanceSession, error) {
	var session models.AttendanceSession
	var checkOut sql.NullTime
	err := row.Scan(&session.ID, &session.EmployeeID, &session.CheckIn, &checkOut, &session.CreatedAt)
	if err != nil {
		return nil, err
	}
	session.CheckIn = session.CheckIn.UTC()
	if checkOut.Valid {
		t := checkOut.Time.UTC()
		session.CheckOut = &t
	}
	return &session, nil
}

func (r *AttendanceSessionRepository) GetOpenForEmployee(ctx context.Context, employeeID string) ([]*models.AttendanceSession, error) {
	query := `SELECT id, employee_id, check_in, check_out, created_at
			  FROM attendance_sessions WHERE employee_id = $1 AND check_out IS NULL
			  ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.AttendanceSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *AttendanceSessionRepository) GetForEmployee(ctx context.Context, employeeID string, skip, take int) ([]*models.AttendanceSession, error) {
	query := `SELECT id, employee_id, check_in, check_out, created_at
			  FROM attendance_sessions WHERE employee_id = $1
			  ORDER BY check_in DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, employeeID, take, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.AttendanceSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *AttendanceSessionRepository) Add(ctx context.Context, session *models.AttendanceSession) error {
	query := `INSERT INTO attendance_sessions (id, employee_id, check_in, check_out, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	var checkOut sql.NullTime
	if session.CheckOut != nil {
		checkOut = sql.NullTime{Time: session.CheckOut.UTC(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.EmployeeID, session.CheckIn.UTC(), checkOut, session.CreatedAt,
	)
	return err
}

func (r *AttendanceSessionRepository) Close(ctx context.Context, id string, checkOut time.Time) error {
	query := `UPDATE attendance_sessions SET check_out = $1 WHERE id = $2 AND check_out IS NULL`
	_, err := r.db.ExecContext(ctx, query, checkOut.UTC(), id)
	return err
}
