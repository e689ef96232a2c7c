package dto

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	InvitationID    *uuid.UUID `json:"invitation_id,omitempty"`
	Date            string     `json:"date"`
	StartTime       string     `json:"start_time"`
	DurationMinutes int        `json:"duration_minutes"`
	AppointmentType string     `json:"appointment_type"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}
