package services

import (
	"context"
	"errors"
	"time"

	"github.com/attendsync/server/internal/device"
	"github.com/attendsync/server/internal/models"
)

// In-memory repository fakes. Slice order stands in for creation order
// so the reconciler's "most recently created" policy is observable.

type fakeDeviceRepo struct {
	devices map[string]*models.Device
}

func newFakeDeviceRepo(devices ...*models.Device) *fakeDeviceRepo {
	repo := &fakeDeviceRepo{devices: make(map[string]*models.Device)}
	for _, d := range devices {
		repo.devices[d.ID] = d
	}
	return repo
}

func (r *fakeDeviceRepo) GetByID(_ context.Context, id string) (*models.Device, error) {
	return r.devices[id], nil
}

func (r *fakeDeviceRepo) GetAll(_ context.Context) ([]*models.Device, error) {
	var out []*models.Device
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDeviceRepo) Add(_ context.Context, d *models.Device) error {
	r.devices[d.ID] = d
	return nil
}

func (r *fakeDeviceRepo) Update(_ context.Context, d *models.Device) error {
	r.devices[d.ID] = d
	return nil
}

func (r *fakeDeviceRepo) UpdateStatus(_ context.Context, id string, status models.DeviceStatus) error {
	if d, ok := r.devices[id]; ok {
		d.Status = status
	}
	return nil
}

func (r *fakeDeviceRepo) UpdateLastSync(_ context.Context, id string, at time.Time) error {
	if d, ok := r.devices[id]; ok {
		t := at.UTC()
		d.LastSyncAt = &t
	}
	return nil
}

func (r *fakeDeviceRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.devices[id]; !ok {
		return false, nil
	}
	delete(r.devices, id)
	return true, nil
}

type fakeEmployeeRepo struct {
	employees []*models.Employee
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id string) (*models.Employee, error) {
	for _, e := range r.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeEmployeeRepo) GetByDeviceUserID(_ context.Context, deviceUserID string) (*models.Employee, error) {
	for _, e := range r.employees {
		if e.DeviceUserID == deviceUserID {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeEmployeeRepo) GetAll(_ context.Context) ([]*models.Employee, error) {
	return r.employees, nil
}

func (r *fakeEmployeeRepo) Add(_ context.Context, e *models.Employee) error {
	for _, existing := range r.employees {
		if existing.DeviceUserID == e.DeviceUserID {
			return errors.New("UNIQUE constraint failed: employees.device_user_id")
		}
	}
	r.employees = append(r.employees, e)
	return nil
}

type fakeEventRepo struct {
	events []*models.AttendanceEvent
}

func eventKey(deviceUserID string, punchedAt time.Time) string {
	return deviceUserID + "|" + punchedAt.UTC().Format(time.RFC3339)
}

func (r *fakeEventRepo) Exists(_ context.Context, deviceUserID string, punchedAt time.Time) (bool, error) {
	key := eventKey(deviceUserID, punchedAt)
	for _, e := range r.events {
		if eventKey(e.DeviceUserID, e.PunchedAt) == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEventRepo) Add(_ context.Context, e *models.AttendanceEvent) error {
	key := eventKey(e.DeviceUserID, e.PunchedAt)
	for _, existing := range r.events {
		if eventKey(existing.DeviceUserID, existing.PunchedAt) == key {
			return errors.New("UNIQUE constraint failed: attendance_events")
		}
	}
	r.events = append(r.events, e)
	return nil
}

func (r *fakeEventRepo) GetForEmployee(_ context.Context, employeeID string, _, _ int) ([]*models.AttendanceEvent, error) {
	var out []*models.AttendanceEvent
	for _, e := range r.events {
		if e.EmployeeID == employeeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) GetCount(_ context.Context) (int, error) {
	return len(r.events), nil
}

func (r *fakeEventRepo) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(r.events))
	r.events = nil
	return n, nil
}

type fakeSessionRepo struct {
	sessions []*models.AttendanceSession
}

func (r *fakeSessionRepo) GetOpenForEmployee(_ context.Context, employeeID string) ([]*models.AttendanceSession, error) {
	var open []*models.AttendanceSession
	for _, s := range r.sessions {
		if s.EmployeeID == employeeID && s.IsOpen() {
			open = append(open, s)
		}
	}
	return open, nil
}

func (r *fakeSessionRepo) GetForEmployee(_ context.Context, employeeID string, _, _ int) ([]*models.AttendanceSession, error) {
	var out []*models.AttendanceSession
	for _, s := range r.sessions {
		if s.EmployeeID == employeeID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Add(_ context.Context, s *models.AttendanceSession) error {
	r.sessions = append(r.sessions, s)
	return nil
}

func (r *fakeSessionRepo) Close(_ context.Context, id string, checkOut time.Time) error {
	for _, s := range r.sessions {
		if s.ID == id && s.IsOpen() {
			t := checkOut.UTC()
			s.CheckOut = &t
			return nil
		}
	}
	return nil
}

func (r *fakeSessionRepo) openCount(employeeID string) int {
	n := 0
	for _, s := range r.sessions {
		if s.EmployeeID == employeeID && s.IsOpen() {
			n++
		}
	}
	return n
}

// Fake terminal client

type fakeSession struct {
	users        []device.User
	punches      []device.RawPunch
	usersErr     error
	logErr       error
	clearErr     error
	deviceName   string
	firmware     string
	infoErr      error
	cleared      bool
	restarted    bool
	disconnected bool
}

func (s *fakeSession) GetUsers(_ context.Context) ([]device.User, error) {
	return s.users, s.usersErr
}

func (s *fakeSession) GetAttendanceLog(_ context.Context) ([]device.RawPunch, error) {
	if s.logErr != nil {
		return nil, s.logErr
	}
	return s.punches, nil
}

func (s *fakeSession) ClearAttendanceLog(_ context.Context) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = true
	s.punches = nil
	return nil
}

func (s *fakeSession) Restart(_ context.Context) error {
	s.restarted = true
	return nil
}

func (s *fakeSession) DeviceName(_ context.Context) (string, error) {
	return s.deviceName, s.infoErr
}

func (s *fakeSession) FirmwareVersion(_ context.Context) (string, error) {
	return s.firmware, s.infoErr
}

func (s *fakeSession) Disconnect() error {
	s.disconnected = true
	return nil
}

type fakeDialer struct {
	session *fakeSession
	dialErr error
	dials   int
}

func (d *fakeDialer) Dial(_ context.Context, _ string, _ int, _ time.Duration, _ device.Credentials) (device.Session, error) {
	d.dials++
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.session, nil
}
