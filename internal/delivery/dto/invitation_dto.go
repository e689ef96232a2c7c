package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SlotFreedRequest announces a bookable opening, either entered by staff or
// produced by a cancellation
type SlotFreedRequest struct {
	Date            string `json:"date" validate:"required,dateymd"`
	StartTime       string `json:"start_time" validate:"required,timehhmm"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gte=5,lte=480"`
	AppointmentType string `json:"appointment_type" validate:"required,min=2,max=50"`
}

// CreateInvitationRequest offers a slot to a specific waiting-list entry,
// bypassing automatic matching
type CreateInvitationRequest struct {
	EntryID           uuid.UUID `json:"entry_id" validate:"required"`
	Date              string    `json:"date" validate:"required,dateymd"`
	StartTime         string    `json:"start_time" validate:"required,timehhmm"`
	DurationMinutes   int       `json:"duration_minutes" validate:"required,gte=5,lte=480"`
	AppointmentType   string    `json:"appointment_type" validate:"required,min=2,max=50"`
	ConfirmationHours int       `json:"confirmation_hours" validate:"omitempty,gte=1,lte=168"`
}

type DeclineInvitationRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=100"`
}

type InvitationResponse struct {
	ID                   uuid.UUID       `json:"id"`
	WaitingListEntryID   uuid.UUID       `json:"waiting_list_entry_id"`
	PatientID            uuid.UUID       `json:"patient_id"`
	SlotDate             string          `json:"slot_date"`
	SlotStartTime        string          `json:"slot_start_time"`
	SlotDurationMinutes  int             `json:"slot_duration_minutes"`
	AppointmentType      string          `json:"appointment_type"`
	ReasonFreed          string          `json:"reason_freed,omitempty"`
	SentAt               time.Time       `json:"sent_at"`
	ConfirmationDeadline time.Time       `json:"confirmation_deadline"`
	PaymentRequired      decimal.Decimal `json:"payment_required"`
	Status               string          `json:"status"`
	ViewedAt             *time.Time      `json:"viewed_at,omitempty"`
	AcceptedAt           *time.Time      `json:"accepted_at,omitempty"`
	PaymentConfirmedAt   *time.Time      `json:"payment_confirmed_at,omitempty"`
	DeclineReason        string          `json:"decline_reason,omitempty"`
}
