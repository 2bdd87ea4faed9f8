// Package device defines the contract a vendor terminal client must
// implement. The wire protocol itself ships in vendor-specific builds;
// this package only carries the interfaces and the driver registry.
package device

import (
	"context"
	"time"
)

// TimestampLayout is the canonical wall-clock form a raw punch carries.
// The value is naive device-local time; the sync pipeline reinterprets
// it in the configured zone before storing anything.
const TimestampLayout = "2006-01-02 15:04:05"

// Credentials authenticate a session against a terminal
type Credentials struct {
	CommKey int
}

// User is one entry of the terminal's user directory
type User struct {
	DeviceUserID string
	Name         string
}

// RawPunch is one raw log entry as the terminal reports it
type RawPunch struct {
	DeviceUserID string
	Timestamp    string // naive local wall clock, TimestampLayout
	Status       int    // vendor attendance status code
	Direction    int    // 0=in, 1=out
}

// Session is an open connection to one terminal. Disconnect must be
// called on every exit path; all other calls are invalid afterwards.
type Session interface {
	GetUsers(ctx context.Context) ([]User, error)
	GetAttendanceLog(ctx context.Context) ([]RawPunch, error)
	ClearAttendanceLog(ctx context.Context) error
	Restart(ctx context.Context) error
	DeviceName(ctx context.Context) (string, error)
	FirmwareVersion(ctx context.Context) (string, error)
	Disconnect() error
}

// Dialer opens sessions to terminals
type Dialer interface {
	Dial(ctx context.Context, address string, port int, timeout time.Duration, creds Credentials) (Session, error)
}
