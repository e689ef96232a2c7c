package repository

import (
	"clinic-appointment-manager/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	// FindByInvitationID returns the appointment created from an invitation,
	// if any, so payment confirmation can be idempotent
	FindByInvitationID(db *gorm.DB, invitationID uuid.UUID) (*entity.Appointment, error)
	// Cancel atomically cancels an appointment only if it is still
	// scheduled. Returns affected rows: 1 = success, 0 = already cancelled.
	Cancel(db *gorm.DB, id uuid.UUID) (int64, error)
}
