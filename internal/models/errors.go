package models

import "fmt"

// ConnectionError is fatal for the device's sync pass: the terminal could
// not be reached within its configured timeout or rejected the session.
type ConnectionError struct {
	Address string
	Port    int
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("unable to connect to device %s:%d: %v", e.Address, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Sync errors
var (
	// ErrNoAttendanceLog means the punch log could not be fetched or was
	// empty; there is nothing to reconcile so the pass fails.
	ErrNoAttendanceLog = SyncError{"unable to get the attendance log, please try again later"}

	// ErrDeviceLogEmpty guards clear-attendance against wiping local rows
	// when the device itself holds nothing.
	ErrDeviceLogEmpty = SyncError{"device attendance log is empty, nothing to clear"}
)

type SyncError struct {
	Message string
}

func (e SyncError) Error() string {
	return e.Message
}
