package handler

import (
	"encoding/json"
	"net/http"

	"clinic-appointment-manager/internal/delivery/dto"
	"clinic-appointment-manager/internal/delivery/http/middleware"
	"clinic-appointment-manager/internal/domain/entity"
	"clinic-appointment-manager/internal/usecase"
	"clinic-appointment-manager/pkg/response"
	"clinic-appointment-manager/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ConsultationHandler struct {
	consultationUsecase usecase.ConsultationUsecase
	validator           *validator.CustomValidator
}

func NewConsultationHandler(consultationUsecase usecase.ConsultationUsecase, validator *validator.CustomValidator) *ConsultationHandler {
	return &ConsultationHandler{
		consultationUsecase: consultationUsecase,
		validator:           validator,
	}
}

func (h *ConsultationHandler) Create(w http.ResponseWriter, r *http.Request) {
	staffID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	var req dto.CreateConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	consultation, err := h.consultationUsecase.Create(r.Context(), staffID, &req)
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrAppointmentNotEligible:
			response.Conflict(w, "Appointment is cancelled")
		default:
			response.InternalServerError(w, "Failed to create consultation")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Consultation recorded successfully", consultation)
}

func (h *ConsultationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	consultation, err := h.consultationUsecase.GetByID(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrConsultationNotFound:
			response.NotFound(w, "Consultation not found")
		default:
			response.InternalServerError(w, "Failed to get consultation")
		}
		return
	}

	// Patients only see their own consultation notes
	roleID, _ := middleware.GetRoleIDFromContext(r.Context())
	if roleID == entity.RoleIDPatient {
		userID, _ := middleware.GetUserIDFromContext(r.Context())
		if consultation.PatientID != userID {
			response.Forbidden(w, "Consultation does not belong to you")
			return
		}
	}

	response.Success(w, http.StatusOK, "Consultation retrieved successfully", consultation)
}

func (h *ConsultationHandler) GetMyConsultations(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	consultations, err := h.consultationUsecase.ListByPatient(r.Context(), patientID)
	if err != nil {
		response.InternalServerError(w, "Failed to get consultations")
		return
	}

	response.Success(w, http.StatusOK, "Consultations retrieved successfully", consultations)
}

func (h *ConsultationHandler) Update(w http.ResponseWriter, r *http.Request) {
	staffID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	var req dto.UpdateConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	consultation, err := h.consultationUsecase.Update(r.Context(), staffID, id, &req)
	if err != nil {
		switch err {
		case usecase.ErrConsultationNotFound:
			response.NotFound(w, "Consultation not found")
		default:
			response.InternalServerError(w, "Failed to update consultation")
		}
		return
	}

	response.Success(w, http.StatusOK, "Consultation updated successfully", consultation)
}
