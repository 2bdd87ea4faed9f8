package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/attendsync/server/internal/models"
)

// DeviceRepository implements DeviceRepo for PostgreSQL/SQLite
type DeviceRepository struct {
	db *sql.DB
}

// NewDeviceRepository creates a new DeviceRepository
func NewDeviceRepository(db *sql.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

const deviceColumns = `id, name, address, port, timeout_seconds, model, comm_key, last_sync_at, status, created_at`

func scanDevice(row interface{ Scan(...interface{}) error }) (*models.Device, error) {
	var device models.Device
	var lastSync sql.NullTime
	err := row.Scan(
		&device.ID, &device.Name, &device.Address, &device.Port,
		&device.TimeoutSeconds, &device.Model, &device.CommKey,
		&lastSync, &device.Status, &device.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastSync.Valid {
		t := lastSync.Time.UTC()
		device.LastSyncAt = &t
	}
	return &device, nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, id string) (*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = $1`

	device, err := scanDevice(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return device, nil
}

func (r *DeviceRepository) GetAll(ctx context.Context) ([]*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*models.Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, rows.Err()
}

func (r *DeviceRepository) Add(ctx context.Context, device *models.Device) error {
	query := `INSERT INTO devices (id, name, address, port, timeout_seconds, model, comm_key, status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		device.ID, device.Name, device.Address, device.Port,
		device.TimeoutSeconds, device.Model, device.CommKey,
		device.Status, device.CreatedAt,
	)
	return err
}

func (r *DeviceRepository) Update(ctx context.Context, device *models.Device) error {
	// Placeholders stay in appearance order so the statement binds the
	// same under PostgreSQL and SQLite.
	query := `UPDATE devices SET name = $1, address = $2, port = $3, timeout_seconds = $4, model = $5, comm_key = $6
			  WHERE id = $7`

	_, err := r.db.ExecContext(ctx, query,
		device.Name, device.Address, device.Port,
		device.TimeoutSeconds, device.Model, device.CommKey, device.ID,
	)
	return err
}

func (r *DeviceRepository) UpdateStatus(ctx context.Context, id string, status models.DeviceStatus) error {
	query := `UPDATE devices SET status = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *DeviceRepository) UpdateLastSync(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE devices SET last_sync_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, at.UTC(), id)
	return err
}

func (r *DeviceRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	return rows > 0, err
}
