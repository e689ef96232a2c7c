package dto

import (
	"time"

	"github.com/google/uuid"
)

type EnrollWaitingListRequest struct {
	AppointmentType string   `json:"appointment_type" validate:"required,min=2,max=50"`
	PreferredDates  []string `json:"preferred_dates" validate:"omitempty,dive,dateymd"`
	PreferredTimes  []string `json:"preferred_times" validate:"omitempty,dive,timehhmm"`
	Priority        string   `json:"priority" validate:"omitempty,priority"`
}

type WaitingListEntryResponse struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	AppointmentType string     `json:"appointment_type"`
	PreferredDates  []string   `json:"preferred_dates"`
	PreferredTimes  []string   `json:"preferred_times"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	ContactAttempts int        `json:"contact_attempts"`
	LastContactDate *time.Time `json:"last_contact_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
