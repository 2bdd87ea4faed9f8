package repository

import (
	"context"
	"time"

	"github.com/attendsync/server/internal/models"
)

// DeviceRepo defines persistence operations for configured terminals
type DeviceRepo interface {
	GetByID(ctx context.Context, id string) (*models.Device, error)
	GetAll(ctx context.Context) ([]*models.Device, error)
	Add(ctx context.Context, device *models.Device) error
	Update(ctx context.Context, device *models.Device) error
	UpdateStatus(ctx context.Context, id string, status models.DeviceStatus) error
	UpdateLastSync(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) (bool, error)
}

// EmployeeRepo defines persistence operations for employee identities.
// The storage layer enforces uniqueness of the device-local user id so
// concurrent syncs cannot create the same employee twice.
type EmployeeRepo interface {
	GetByID(ctx context.Context, id string) (*models.Employee, error)
	GetByDeviceUserID(ctx context.Context, deviceUserID string) (*models.Employee, error)
	GetAll(ctx context.Context) ([]*models.Employee, error)
	Add(ctx context.Context, employee *models.Employee) error
}

// AttendanceEventRepo defines the append-only punch log. Exists is the
// dedup gate: an exact lookup on the (device-local user id, instant) key.
type AttendanceEventRepo interface {
	Exists(ctx context.Context, deviceUserID string, punchedAt time.Time) (bool, error)
	Add(ctx context.Context, event *models.AttendanceEvent) error
	GetForEmployee(ctx context.Context, employeeID string, skip, take int) ([]*models.AttendanceEvent, error)
	GetCount(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// AttendanceSessionRepo defines check-in/check-out session storage.
// GetOpenForEmployee returns open sessions ordered by creation time,
// oldest first.
type AttendanceSessionRepo interface {
	GetOpenForEmployee(ctx context.Context, employeeID string) ([]*models.AttendanceSession, error)
	GetForEmployee(ctx context.Context, employeeID string, skip, take int) ([]*models.AttendanceSession, error)
	Add(ctx context.Context, session *models.AttendanceSession) error
	Close(ctx context.Context, id string, checkOut time.Time) error
}
