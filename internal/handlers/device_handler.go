package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/attendsync/server/internal/models"
	"github.com/attendsync/server/internal/repository"
)

// DeviceHandler handles terminal configuration endpoints
type DeviceHandler struct {
	deviceRepo repository.DeviceRepo
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(deviceRepo repository.DeviceRepo) *DeviceHandler {
	return &DeviceHandler{
		deviceRepo: deviceRepo,
	}
}

// RegisterDevice registers a new biometric terminal
// @Summary Register device
// @Description Register a biometric terminal for attendance sync
// @Tags devices
// @Accept json
// @Produce json
// @Param request body models.RegisterDeviceRequest true "Device info"
// @Success 200 {object} models.Device
// @Failure 400 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/devices [post]
func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	device, err := models.NewDevice(req.Name, req.Address, req.Port, req.TimeoutSeconds, req.Model)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	device.CommKey = req.CommKey

	if err := h.deviceRepo.Add(r.Context(), device); err != nil {
		http.Error(w, "Failed to register device", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(device)
}

// ListDevices returns all configured terminals
// @Summary List devices
// @Description List all configured biometric terminals
// @Tags devices
// @Produce json
// @Success 200 {array} models.Device
// @Security ApiKeyAuth
// @Router /api/devices [get]
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.deviceRepo.GetAll(r.Context())
	if err != nil {
		http.Error(w, "Failed to list devices", http.StatusInternalServerError)
		return
	}
	if devices == nil {
		devices = []*models.Device{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(devices)
}

// GetDevice returns one configured terminal
// @Summary Get device
// @Description Get a configured terminal by id
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} models.Device
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/devices/{id} [get]
func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	device, err := h.deviceRepo.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if device == nil {
		http.Error(w, "Device not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(device)
}

// UpdateDevice updates a terminal's configuration
// @Summary Update device
// @Description Update a terminal's connection settings
// @Tags devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param request body models.RegisterDeviceRequest true "Device info"
// @Success 200 {object} models.Device
// @Security ApiKeyAuth
// @Router /api/devices/{id} [put]
func (h *DeviceHandler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	device, err := h.deviceRepo.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if device == nil {
		http.Error(w, "Device not found", http.StatusNotFound)
		return
	}

	var req models.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := models.NewDevice(req.Name, req.Address, req.Port, req.TimeoutSeconds, req.Model)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	device.Name = updated.Name
	device.Address = updated.Address
	device.Port = updated.Port
	device.TimeoutSeconds = updated.TimeoutSeconds
	device.Model = updated.Model
	device.CommKey = req.CommKey

	if err := h.deviceRepo.Update(r.Context(), device); err != nil {
		http.Error(w, "Failed to update device", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(device)
}

// DeleteDevice removes a terminal configuration
// @Summary Delete device
// @Description Remove a configured terminal
// @Tags devices
// @Param id path string true "Device ID"
// @Success 204 "Deleted"
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/devices/{id} [delete]
func (h *DeviceHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.deviceRepo.Delete(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to delete device", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Device not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
