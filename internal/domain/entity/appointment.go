package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment is a confirmed booking. It is created exactly once, as a side
// effect of an invitation reaching confirmed; cancelling it frees its slot
// back into waiting-list matching.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	InvitationID    *uuid.UUID        `gorm:"type:uuid;index" json:"invitation_id,omitempty"`
	Date            time.Time         `gorm:"type:date;not null;index" json:"date"`
	StartTime       string            `gorm:"type:varchar(5);not null" json:"start_time"`
	DurationMinutes int               `gorm:"not null" json:"duration_minutes"`
	AppointmentType string            `gorm:"type:varchar(50);not null;index" json:"appointment_type"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient PatientProfile `gorm:"foreignKey:PatientID;references:UserID" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsCancelled checks if the appointment was cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// Slot describes the opportunity this appointment occupies
func (a *Appointment) Slot(reasonFreed string) AvailableSlot {
	return AvailableSlot{
		Date:            a.Date,
		StartTime:       a.StartTime,
		DurationMinutes: a.DurationMinutes,
		AppointmentType: a.AppointmentType,
		ReasonFreed:     reasonFreed,
	}
}
