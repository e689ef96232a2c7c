package entity

import (
	"time"

	"github.com/google/uuid"
)

// PatientProfile represents patient-specific profile data
type PatientProfile struct {
	UserID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	MedicalRecordNumber string    `gorm:"column:medical_record_number;type:varchar(20);uniqueIndex;not null" json:"medical_record_number"`
	PhoneNumber         string    `gorm:"type:varchar(20);index" json:"phone_number,omitempty"`
	DateOfBirth         time.Time `gorm:"type:date;not null" json:"date_of_birth"`
	Gender              string    `gorm:"type:char(1);not null" json:"gender"`
	Address             string    `gorm:"type:text" json:"address,omitempty"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

// Contact returns the preferred notification address for the patient.
// Falls back to empty when no phone number is registered; the notifier
// logs and skips empty contacts.
func (p *PatientProfile) Contact() string {
	return p.PhoneNumber
}
