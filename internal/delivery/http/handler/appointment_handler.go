package handler

import (
	"net/http"

	"clinic-appointment-manager/internal/delivery/http/middleware"
	"clinic-appointment-manager/internal/domain/entity"
	"clinic-appointment-manager/internal/usecase"
	"clinic-appointment-manager/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase) *AppointmentHandler {
	return &AppointmentHandler{appointmentUsecase: appointmentUsecase}
}

func (h *AppointmentHandler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	appointments, err := h.appointmentUsecase.GetMyAppointments(r.Context(), patientID)
	if err != nil {
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	appointment, err := h.appointmentUsecase.GetByID(r.Context(), appointmentID)
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		default:
			response.InternalServerError(w, "Failed to get appointment")
		}
		return
	}

	// Patients only see their own appointments
	roleID, _ := middleware.GetRoleIDFromContext(r.Context())
	if roleID == entity.RoleIDPatient {
		userID, _ := middleware.GetUserIDFromContext(r.Context())
		if appointment.PatientID != userID {
			response.Forbidden(w, "Appointment does not belong to you")
			return
		}
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

// Cancel frees the appointment's slot back into waiting-list matching.
// The response carries the follow-up invitation when one was sent.
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	actorPatientID := userID
	roleID, _ := middleware.GetRoleIDFromContext(r.Context())
	if roleID == entity.RoleIDAdmin || roleID == entity.RoleIDStaff {
		actorPatientID = uuid.Nil
	}

	invitation, err := h.appointmentUsecase.Cancel(r.Context(), appointmentID, actorPatientID)
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrNotAppointmentOwner:
			response.Forbidden(w, "Appointment does not belong to you")
		case usecase.ErrAppointmentAlreadyCancelled:
			response.Conflict(w, "Appointment is already cancelled")
		default:
			response.InternalServerError(w, "Failed to cancel appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", invitation)
}
