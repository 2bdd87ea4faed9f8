package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeviceStatus is the last known connection state of a terminal
type DeviceStatus string

const (
	DeviceStatusDisconnected DeviceStatus = "disconnected"
	DeviceStatusConnected    DeviceStatus = "connected"
	DeviceStatusError        DeviceStatus = "error"
)

// Device represents a configured biometric terminal
type Device struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Address        string       `json:"address"`
	Port           int          `json:"port"`
	TimeoutSeconds int          `json:"timeoutSeconds"`
	Model          string       `json:"model"` // "uface202", "iface990", "u280" or "other"
	CommKey        int          `json:"-"`     // device communication key, never exposed
	LastSyncAt     *time.Time   `json:"lastSyncAt,omitempty"`
	Status         DeviceStatus `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// Timeout returns the configured connection timeout
func (d *Device) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// RegisterDeviceRequest is the request body for registering a terminal
type RegisterDeviceRequest struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Port           int    `json:"port"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	Model          string `json:"model"`
	CommKey        int    `json:"commKey"`
}

// NewDevice creates a new terminal registration
func NewDevice(name, address string, port, timeoutSeconds int, model string) (*Device, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	model = strings.TrimSpace(strings.ToLower(model))

	if address == "" {
		return nil, ErrEmptyAddress
	}
	if port <= 0 || port > 65535 {
		return nil, ErrInvalidPort
	}
	if name == "" {
		name = address
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	if model == "" {
		model = "other"
	}

	return &Device{
		ID:             uuid.New().String(),
		Name:           name,
		Address:        address,
		Port:           port,
		TimeoutSeconds: timeoutSeconds,
		Model:          model,
		Status:         DeviceStatusDisconnected,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Device errors
var (
	ErrEmptyAddress   = DeviceError{"device address cannot be empty"}
	ErrInvalidPort    = DeviceError{"device port must be between 1 and 65535"}
	ErrDeviceNotFound = DeviceError{"device not found"}
)

type DeviceError struct {
	Message string
}

func (e DeviceError) Error() string {
	return e.Message
}
