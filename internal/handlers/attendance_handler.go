package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/attendsync/server/internal/models"
	"github.com/attendsync/server/internal/repository"
)

// AttendanceHandler exposes read access to employees, events and sessions
type AttendanceHandler struct {
	employeeRepo repository.EmployeeRepo
	eventRepo    repository.AttendanceEventRepo
	sessionRepo  repository.AttendanceSessionRepo
}

// NewAttendanceHandler creates a new AttendanceHandler
func NewAttendanceHandler(
	employeeRepo repository.EmployeeRepo,
	eventRepo repository.AttendanceEventRepo,
	sessionRepo repository.AttendanceSessionRepo,
) *AttendanceHandler {
	return &AttendanceHandler{
		employeeRepo: employeeRepo,
		eventRepo:    eventRepo,
		sessionRepo:  sessionRepo,
	}
}

// ListEmployees returns all known employees
// @Summary List employees
// @Tags attendance
// @Produce json
// @Success 200 {array} models.Employee
// @Security ApiKeyAuth
// @Router /api/employees [get]
func (h *AttendanceHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeRepo.GetAll(r.Context())
	if err != nil {
		http.Error(w, "Failed to list employees", http.StatusInternalServerError)
		return
	}
	if employees == nil {
		employees = []*models.Employee{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(employees)
}

// ListSessions returns attendance sessions for one employee
// @Summary List attendance sessions
// @Tags attendance
// @Produce json
// @Param id path string true "Employee ID"
// @Param skip query int false "Rows to skip"
// @Param take query int false "Rows to return (max 200)"
// @Success 200 {array} models.AttendanceSession
// @Security ApiKeyAuth
// @Router /api/employees/{id}/sessions [get]
func (h *AttendanceHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	skip, take := pagination(r)

	sessions, err := h.sessionRepo.GetForEmployee(r.Context(), id, skip, take)
	if err != nil {
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []*models.AttendanceSession{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

// ListEvents returns raw attendance events for one employee
// @Summary List attendance events
// @Tags attendance
// @Produce json
// @Param id path string true "Employee ID"
// @Param skip query int false "Rows to skip"
// @Param take query int false "Rows to return (max 200)"
// @Success 200 {array} models.AttendanceEvent
// @Security ApiKeyAuth
// @Router /api/employees/{id}/events [get]
func (h *AttendanceHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	skip, take := pagination(r)

	events, err := h.eventRepo.GetForEmployee(r.Context(), id, skip, take)
	if err != nil {
		http.Error(w, "Failed to list events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []*models.AttendanceEvent{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

func pagination(r *http.Request) (skip, take int) {
	take = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil && v >= 0 {
		skip = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("take")); err == nil && v > 0 && v <= 200 {
		take = v
	}
	return skip, take
}
