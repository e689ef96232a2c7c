package handler

import (
	"errors"
	"net/http"

	"clinic-appointment-manager/internal/service"
	"clinic-appointment-manager/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// MonitorHandler exposes the deadline monitor's registry for operational
// visibility and manual intervention
type MonitorHandler struct {
	monitor   *service.DeadlineMonitor
	lifecycle service.InvitationLifecycle
}

func NewMonitorHandler(monitor *service.DeadlineMonitor, lifecycle service.InvitationLifecycle) *MonitorHandler {
	return &MonitorHandler{
		monitor:   monitor,
		lifecycle: lifecycle,
	}
}

func (h *MonitorHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Monitor status retrieved successfully", h.monitor.Status())
}

// Sweep triggers one pass immediately instead of waiting for the next tick
func (h *MonitorHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	h.monitor.Sweep(r.Context(), h.lifecycle)
	response.Success(w, http.StatusOK, "Sweep completed", h.monitor.Status())
}

// Reload rebuilds the registry from the database
func (h *MonitorHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.monitor.ReloadPending(r.Context()); err != nil {
		response.InternalServerError(w, "Failed to reload pending invitations")
		return
	}
	response.Success(w, http.StatusOK, "Pending invitations reloaded", h.monitor.Status())
}

// TestReminder pushes an immediate reminder for a tracked invitation
func (h *MonitorHandler) TestReminder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	invitationID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid invitation ID", nil)
		return
	}

	if err := h.monitor.TestReminder(r.Context(), invitationID); err != nil {
		if errors.Is(err, service.ErrMonitorNotTracking) {
			response.NotFound(w, "Invitation is not tracked by the monitor")
			return
		}
		response.InternalServerError(w, "Failed to send reminder")
		return
	}

	response.Success(w, http.StatusOK, "Reminder sent", nil)
}
