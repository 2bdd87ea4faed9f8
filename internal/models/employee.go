package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Employee is the durable HR identity a device-local user id maps onto.
// DeviceUserID is empty until the employee is first seen on a terminal.
type Employee struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DeviceUserID string    `json:"deviceUserId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewEmployee creates an employee record for a device-local user id.
// The directory name may be empty; the device-local id stands in then.
func NewEmployee(name, deviceUserID string) (*Employee, error) {
	name = strings.TrimSpace(name)
	deviceUserID = strings.TrimSpace(deviceUserID)

	if deviceUserID == "" {
		return nil, ErrEmptyDeviceUserID
	}
	if name == "" {
		name = deviceUserID
	}

	return &Employee{
		ID:           uuid.New().String(),
		Name:         name,
		DeviceUserID: deviceUserID,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Employee errors
var (
	ErrEmptyDeviceUserID = EmployeeError{"device-local user id cannot be empty"}
	ErrEmployeeNotFound  = EmployeeError{"employee not found"}
)

type EmployeeError struct {
	Message string
}

func (e EmployeeError) Error() string {
	return e.Message
}
