package entity

import (
	"time"

	"github.com/google/uuid"
)

// Consultation is a clinical note recorded by staff against an appointment
type Consultation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`
	PatientID     uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	StaffID       uuid.UUID `gorm:"type:uuid;not null;index" json:"staff_id"`
	Diagnosis     string    `gorm:"type:varchar(255)" json:"diagnosis,omitempty"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}

func (Consultation) TableName() string {
	return "consultations"
}
