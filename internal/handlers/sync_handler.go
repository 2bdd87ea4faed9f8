package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/attendsync/server/internal/models"
	"github.com/attendsync/server/internal/services"
)

// SyncHandler exposes sync, diagnostic and scheduler operations
type SyncHandler struct {
	syncService *services.SyncService
	scheduler   *services.SyncSchedulerService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *services.SyncService, scheduler *services.SyncSchedulerService) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		scheduler:   scheduler,
	}
}

// SyncAll runs a sync pass over every configured terminal
// @Summary Sync all devices
// @Description Run an attendance sync pass over every configured terminal
// @Tags sync
// @Produce json
// @Success 200 {array} models.SyncReport
// @Security ApiKeyAuth
// @Router /api/sync [post]
func (h *SyncHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	reports, err := h.syncService.SyncAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reports)
}

// SyncOne runs a sync pass for a single terminal
// @Summary Sync one device
// @Description Run an attendance sync pass for one terminal
// @Tags sync
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} models.SyncReport
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.SyncReport
// @Security ApiKeyAuth
// @Router /api/devices/{id}/sync [post]
func (h *SyncHandler) SyncOne(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.syncService.SyncOne(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrDeviceNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		// The report still carries the counters from the partial pass
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(report)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// TestConnection runs the connection diagnostic for a terminal
// @Summary Test device connection
// @Description Connect to the terminal and report device name and firmware
// @Tags sync
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} models.ConnectionTestReport
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/devices/{id}/test-connection [post]
func (h *SyncHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.syncService.TestConnection(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrDeviceNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// ClearAttendance clears the device log and all local attendance events
// @Summary Clear attendance
// @Description Clear the device-side log and delete all stored attendance events
// @Tags sync
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} map[string]int64
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/devices/{id}/clear-attendance [post]
func (h *SyncHandler) ClearAttendance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.syncService.ClearAttendance(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDeviceNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, models.ErrDeviceLogEmpty):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"deletedEvents": deleted})
}

// RestartDevice issues a restart command to the terminal
// @Summary Restart device
// @Description Issue a restart command to the terminal
// @Tags sync
// @Param id path string true "Device ID"
// @Success 204 "Restarted"
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/devices/{id}/restart [post]
func (h *SyncHandler) RestartDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.syncService.Restart(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrDeviceNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SchedulerStatus returns the sync scheduler status
// @Summary Scheduler status
// @Tags scheduler
// @Produce json
// @Success 200 {object} services.SchedulerStatus
// @Security ApiKeyAuth
// @Router /api/scheduler/status [get]
func (h *SyncHandler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.scheduler.GetStatus())
}

// StartScheduler starts the periodic sync loop
// @Summary Start scheduler
// @Tags scheduler
// @Success 204 "Started"
// @Security ApiKeyAuth
// @Router /api/scheduler/start [post]
func (h *SyncHandler) StartScheduler(w http.ResponseWriter, r *http.Request) {
	h.scheduler.Start()
	w.WriteHeader(http.StatusNoContent)
}

// StopScheduler stops the periodic sync loop
// @Summary Stop scheduler
// @Tags scheduler
// @Success 204 "Stopped"
// @Security ApiKeyAuth
// @Router /api/scheduler/stop [post]
func (h *SyncHandler) StopScheduler(w http.ResponseWriter, r *http.Request) {
	h.scheduler.Stop()
	w.WriteHeader(http.StatusNoContent)
}

// RunSchedulerNow triggers an immediate pass over all devices
// @Summary Trigger sync pass
// @Tags scheduler
// @Success 202 "Accepted"
// @Security ApiKeyAuth
// @Router /api/scheduler/run [post]
func (h *SyncHandler) RunSchedulerNow(w http.ResponseWriter, r *http.Request) {
	h.scheduler.RunNow()
	w.WriteHeader(http.StatusAccepted)
}
