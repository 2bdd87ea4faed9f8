package models

import "time"

// SyncReport summarizes one sync pass over a single terminal
type SyncReport struct {
	DeviceID        string    `json:"deviceId"`
	DeviceName      string    `json:"deviceName"`
	StartedAt       time.Time `json:"startedAt"`
	Duration        string    `json:"duration"`
	PunchesFetched  int       `json:"punchesFetched"`
	EventsCreated   int       `json:"eventsCreated"`
	Duplicates      int       `json:"duplicates"`
	UnknownUsers    int       `json:"unknownUsers"`
	SessionsOpened  int       `json:"sessionsOpened"`
	SessionsClosed  int       `json:"sessionsClosed"`
	OrphanCheckOuts int       `json:"orphanCheckOuts"`
	Error           string    `json:"error,omitempty"`
}

// Failed reports whether the pass ended with a fatal error
func (r *SyncReport) Failed() bool {
	return r.Error != ""
}

// ConnectionTestReport is the result of the user-triggered diagnostic
type ConnectionTestReport struct {
	DeviceID        string `json:"deviceId"`
	Success         bool   `json:"success"`
	DeviceName      string `json:"deviceName,omitempty"`
	FirmwareVersion string `json:"firmwareVersion,omitempty"`
	Model           string `json:"model"`
	Message         string `json:"message"`
}

// ErrorResponse is the generic error body returned by the API
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the health check body
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
