package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateConsultationRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
	Diagnosis     string    `json:"diagnosis" validate:"omitempty,max=255"`
	Notes         string    `json:"notes" validate:"omitempty"`
}

type UpdateConsultationRequest struct {
	Diagnosis string `json:"diagnosis" validate:"omitempty,max=255"`
	Notes     string `json:"notes" validate:"omitempty"`
}

type ConsultationResponse struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	StaffID       uuid.UUID `json:"staff_id"`
	Diagnosis     string    `json:"diagnosis,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
