package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"clinic-appointment-manager/internal/converter"
	"clinic-appointment-manager/internal/delivery/dto"
	"clinic-appointment-manager/internal/delivery/http/middleware"
	"clinic-appointment-manager/internal/domain/entity"
	"clinic-appointment-manager/internal/service"
	"clinic-appointment-manager/pkg/response"
	"clinic-appointment-manager/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type InvitationHandler struct {
	lifecycle service.InvitationLifecycle
	validator *validator.CustomValidator
}

func NewInvitationHandler(lifecycle service.InvitationLifecycle, validator *validator.CustomValidator) *InvitationHandler {
	return &InvitationHandler{
		lifecycle: lifecycle,
		validator: validator,
	}
}

// SlotFreed announces a bookable opening and triggers waiting-list matching
func (h *InvitationHandler) SlotFreed(w http.ResponseWriter, r *http.Request) {
	var req dto.SlotFreedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid date, use YYYY-MM-DD", nil)
		return
	}

	slot := entity.AvailableSlot{
		Date:            date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		AppointmentType: req.AppointmentType,
		ReasonFreed:     entity.SlotFreedReasonManual,
	}

	invitation, err := h.lifecycle.OnSlotFreed(r.Context(), slot)
	if err != nil {
		response.InternalServerError(w, "Failed to match freed slot")
		return
	}
	if invitation == nil {
		response.Success(w, http.StatusOK, "No eligible candidate for this slot", nil)
		return
	}

	response.Success(w, http.StatusCreated, "Invitation sent", converter.InvitationToResponse(invitation))
}

// Create offers a slot to a specific entry, bypassing automatic matching
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid date, use YYYY-MM-DD", nil)
		return
	}

	slot := entity.AvailableSlot{
		Date:            date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		AppointmentType: req.AppointmentType,
		ReasonFreed:     entity.SlotFreedReasonManual,
	}

	invitation, err := h.lifecycle.CreateInvitation(r.Context(), req.EntryID, slot, req.ConfirmationHours)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEntryNotFound):
			response.NotFound(w, "Waiting list entry not found")
		case errors.Is(err, service.ErrEntryNotWaiting):
			response.Conflict(w, "Entry is not in waiting status")
		case errors.Is(err, service.ErrEntryNotEligible):
			response.Error(w, http.StatusBadRequest, "Entry is not eligible for this slot", nil)
		case errors.Is(err, service.ErrSlotAlreadyOffered):
			response.Conflict(w, "Slot already has an active invitation")
		default:
			response.InternalServerError(w, "Failed to create invitation")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Invitation created successfully", converter.InvitationToResponse(invitation))
}

func (h *InvitationHandler) GetMyInvitations(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	invitations, err := h.lifecycle.ListByPatient(r.Context(), patientID)
	if err != nil {
		response.InternalServerError(w, "Failed to get invitations")
		return
	}

	response.Success(w, http.StatusOK, "Invitations retrieved successfully", converter.InvitationsToResponse(invitations))
}

func (h *InvitationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	invitationID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	invitation, err := h.lifecycle.GetByID(r.Context(), invitationID)
	if err != nil {
		if errors.Is(err, service.ErrInvitationNotFound) {
			response.NotFound(w, "Invitation not found")
			return
		}
		response.InternalServerError(w, "Failed to get invitation")
		return
	}

	// Patients only see their own invitations
	roleID, _ := middleware.GetRoleIDFromContext(r.Context())
	if roleID == entity.RoleIDPatient {
		userID, _ := middleware.GetUserIDFromContext(r.Context())
		if invitation.PatientID != userID {
			response.Forbidden(w, "Invitation does not belong to you")
			return
		}
	}

	response.Success(w, http.StatusOK, "Invitation retrieved successfully", converter.InvitationToResponse(invitation))
}

// View records that the patient opened the invitation
func (h *InvitationHandler) View(w http.ResponseWriter, r *http.Request) {
	h.patientTransition(w, r, h.lifecycle.MarkViewed, "Invitation marked as viewed")
}

// Accept records acceptance; payment instructions follow
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.patientTransition(w, r, h.lifecycle.MarkAccepted, "Invitation accepted, payment instructions sent")
}

func (h *InvitationHandler) Decline(w http.ResponseWriter, r *http.Request) {
	invitationID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req dto.DeclineInvitationRequest
	if r.Body != nil {
		// Body is optional for declines
		json.NewDecoder(r.Body).Decode(&req)
	}
	reason := req.Reason
	if reason == "" {
		reason = "declined_by_patient"
	}

	patientID := h.actorPatientID(r)

	invitation, err := h.lifecycle.Decline(r.Context(), invitationID, patientID, reason)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Invitation declined", converter.InvitationToResponse(invitation))
}

// ConfirmPayment is the staff acknowledgement that the deposit arrived;
// it books the appointment
func (h *InvitationHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	invitationID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	actorID, _ := middleware.GetUserIDFromContext(r.Context())

	appointment, err := h.lifecycle.ConfirmPayment(r.Context(), invitationID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvitationNotFound):
			response.NotFound(w, "Invitation not found")
		case errors.Is(err, service.ErrInvitationTerminal):
			response.Conflict(w, "Invitation is already closed")
		case errors.Is(err, service.ErrPaymentStateMismatch):
			response.Conflict(w, "Invitation has not been accepted yet")
		default:
			response.InternalServerError(w, "Failed to confirm payment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Payment confirmed, appointment booked", converter.AppointmentToResponse(appointment))
}

func (h *InvitationHandler) patientTransition(
	w http.ResponseWriter,
	r *http.Request,
	transition func(ctx context.Context, invitationID, patientID uuid.UUID) (*entity.Invitation, error),
	message string,
) {
	invitationID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	patientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	invitation, err := transition(r.Context(), invitationID, patientID)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}

	response.Success(w, http.StatusOK, message, converter.InvitationToResponse(invitation))
}

func (h *InvitationHandler) writeTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvitationNotFound):
		response.NotFound(w, "Invitation not found")
	case errors.Is(err, service.ErrNotInvitationOwner):
		response.Forbidden(w, "Invitation does not belong to you")
	case errors.Is(err, service.ErrInvitationTerminal):
		response.Conflict(w, "Invitation is already closed")
	case errors.Is(err, service.ErrStaleTransition):
		response.Conflict(w, "Invitation changed concurrently, please retry")
	default:
		response.InternalServerError(w, "Failed to update invitation")
	}
}

func (h *InvitationHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid invitation ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// actorPatientID returns the caller's user ID for patients and uuid.Nil for
// clinic staff, who may act on any invitation
func (h *InvitationHandler) actorPatientID(r *http.Request) uuid.UUID {
	roleID, _ := middleware.GetRoleIDFromContext(r.Context())
	if roleID == entity.RoleIDAdmin || roleID == entity.RoleIDStaff {
		return uuid.Nil
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	return userID
}
