package models

import (
	"time"

	"github.com/google/uuid"
)

// Punch directions as reported by the terminal
const (
	PunchIn  = 0
	PunchOut = 1
)

// AttendanceEvent is one accepted punch, append-only.
// (DeviceUserID, PunchedAt) is unique across the table; that pair is the
// dedup key when terminals resend overlapping log windows.
type AttendanceEvent struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	DeviceUserID string    `json:"deviceUserId"`
	Status       int       `json:"status"` // vendor attendance status code
	Direction    int       `json:"direction"`
	PunchedAt    time.Time `json:"punchedAt"` // UTC, whole seconds
	Address      string    `json:"address"`   // originating terminal address
}

// NewAttendanceEvent creates an accepted punch record
func NewAttendanceEvent(employeeID, deviceUserID string, status, direction int, punchedAt time.Time, address string) *AttendanceEvent {
	return &AttendanceEvent{
		ID:           uuid.New().String(),
		EmployeeID:   employeeID,
		DeviceUserID: deviceUserID,
		Status:       status,
		Direction:    direction,
		PunchedAt:    punchedAt.UTC().Truncate(time.Second),
		Address:      address,
	}
}

// AttendanceSession is a check-in/check-out pair for an employee.
// CheckOut is nil while the session is open; at most one open session
// exists per employee at any time.
type AttendanceSession struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	CheckIn    time.Time  `json:"checkIn"`
	CheckOut   *time.Time `json:"checkOut,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// NewAttendanceSession opens a session at the given check-in instant
func NewAttendanceSession(employeeID string, checkIn time.Time) *AttendanceSession {
	return &AttendanceSession{
		ID:         uuid.New().String(),
		EmployeeID: employeeID,
		CheckIn:    checkIn.UTC().Truncate(time.Second),
		CreatedAt:  time.Now().UTC(),
	}
}

// IsOpen reports whether the session has no check-out yet
func (s *AttendanceSession) IsOpen() bool {
	return s.CheckOut == nil
}
