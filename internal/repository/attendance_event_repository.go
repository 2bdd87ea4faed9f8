package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/attendsync/server/internal/models"
)

// AttendanceEventRepository implements AttendanceEventRepo for PostgreSQL/SQLite
type AttendanceEventRepository struct {
	db *sql.DB
}

// NewAttendanceEventRepository creates a new AttendanceEventRepository
func NewAttendanceEventRepository(db *sql.DB) *AttendanceEventRepository {
	return &AttendanceEventRepository{db: db}
}

// Exists is the dedup gate: an exact lookup on the unique
// (device_user_id, punched_at) pair, checked before every insert.
func (r *AttendanceEventRepository) Exists(ctx context.Context, deviceUserID string, punchedAt time.Time) (bool, error) {
	query := `SELECT 1 FROM attendance_events WHERE device_user_id = $1 AND punched_at = $2`

	var one int
	err := r.db.QueryRowContext(ctx, query, deviceUserID, punchedAt.UTC()).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *AttendanceEventRepository) Add(ctx context.Context, event *models.AttendanceEvent) error {
	query := `INSERT INTO attendance_events (id, employee_id, device_user_id, status, direction, punched_at, address)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.EmployeeID, event.DeviceUserID,
		event.Status, event.Direction, event.PunchedAt.UTC(), event.Address,
	)
	return err
}

func (r *AttendanceEventRepository) GetForEmployee(ctx context.Context, employeeID string, skip, take int) ([]*models.AttendanceEvent, error) {
	query := `SELECT id, employee_id, device_user_id, status, direction, punched_at, address
			  FROM attendance_events WHERE employee_id = $1
			  ORDER BY punched_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, employeeID, take, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.AttendanceEvent
	for rows.Next() {
		var event models.AttendanceEvent
		if err := rows.Scan(&event.ID, &event.EmployeeID, &event.DeviceUserID,
			&event.Status, &event.Direction, &event.PunchedAt, &event.Address); err != nil {
			return nil, err
		}
		event.PunchedAt = event.PunchedAt.UTC()
		events = append(events, &event)
	}
	return events, rows.Err()
}

func (r *AttendanceEventRepository) GetCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_events`).Scan(&count)
	return count, err
}

// DeleteAll wipes the whole punch log. Only clear-attendance calls this,
// after the device-side log has been cleared.
func (r *AttendanceEventRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendance_events`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
