package repository

import (
	"clinic-appointment-manager/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsultationRepository interface {
	Create(db *gorm.DB, consultation *entity.Consultation) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Consultation, error)
	FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) ([]entity.Consultation, error)
	Update(db *gorm.DB, consultation *entity.Consultation) error
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
}
