package handler

import (
	"encoding/json"
	"net/http"

	"clinic-appointment-manager/internal/delivery/dto"
	"clinic-appointment-manager/internal/delivery/http/middleware"
	"clinic-appointment-manager/internal/domain/entity"
	"clinic-appointment-manager/internal/service"
	"clinic-appointment-manager/internal/usecase"
	"clinic-appointment-manager/pkg/response"
	"clinic-appointment-manager/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type WaitingListHandler struct {
	waitingListUsecase usecase.WaitingListUsecase
	validator          *validator.CustomValidator
}

func NewWaitingListHandler(waitingListUsecase usecase.WaitingListUsecase, validator *validator.CustomValidator) *WaitingListHandler {
	return &WaitingListHandler{
		waitingListUsecase: waitingListUsecase,
		validator:          validator,
	}
}

func (h *WaitingListHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	var req dto.EnrollWaitingListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	entry, err := h.waitingListUsecase.Enroll(r.Context(), patientID, &req)
	if err != nil {
		switch err {
		case usecase.ErrUnknownAppointmentType:
			response.Error(w, http.StatusBadRequest, "Unknown or inactive appointment type", nil)
		case usecase.ErrAlreadyOnWaitingList:
			response.Conflict(w, "You already have an entry on the waiting list")
		default:
			response.InternalServerError(w, "Failed to enroll on waiting list")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Enrolled on waiting list", entry)
}

func (h *WaitingListHandler) GetMyEntries(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	entries, err := h.waitingListUsecase.GetMyEntries(r.Context(), patientID)
	if err != nil {
		response.InternalServerError(w, "Failed to get waiting list entries")
		return
	}

	response.Success(w, http.StatusOK, "Waiting list entries retrieved successfully", entries)
}

// GetAllEntries lists entries for staff, filtered by the status query param
func (h *WaitingListHandler) GetAllEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.waitingListUsecase.GetAllEntries(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		response.InternalServerError(w, "Failed to get waiting list entries")
		return
	}

	response.Success(w, http.StatusOK, "Waiting list entries retrieved successfully", entries)
}

// Withdraw removes the caller's own entry
func (h *WaitingListHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	// Staff may withdraw anyone's entry; patients only their own
	roleID, _ := middleware.GetRoleIDFromContext(r.Context())
	actorPatientID := patientID
	if roleID == entity.RoleIDAdmin || roleID == entity.RoleIDStaff {
		actorPatientID = uuid.Nil
	}

	vars := mux.Vars(r)
	entryID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid entry ID", nil)
		return
	}

	if err := h.waitingListUsecase.Withdraw(r.Context(), entryID, actorPatientID); err != nil {
		switch err {
		case service.ErrEntryNotFound:
			response.NotFound(w, "Waiting list entry not found")
		case usecase.ErrNotEntryOwner:
			response.Forbidden(w, "Entry does not belong to you")
		case usecase.ErrEntryNotRemovable:
			response.Conflict(w, "Entry cannot be withdrawn in its current status")
		default:
			response.InternalServerError(w, "Failed to withdraw from waiting list")
		}
		return
	}

	response.Success(w, http.StatusOK, "Withdrawn from waiting list", nil)
}
