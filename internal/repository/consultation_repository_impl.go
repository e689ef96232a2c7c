package repository

import (
	"errors"

	"clinic-appointment-manager/internal/domain/entity"
	domainRepo "clinic-appointment-manager/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type consultationRepository struct{}

func NewConsultationRepository() domainRepo.ConsultationRepository {
	return &consultationRepository{}
}

func (r *consultationRepository) Create(db *gorm.DB, consultation *entity.Consultation) error {
	return db.Create(consultation).Error
}

func (r *consultationRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error) {
	var consultation entity.Consultation
	err := db.Preload("Appointment").Where("id = ?", id).First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

func (r *consultationRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Consultation, error) {
	var consultations []entity.Consultation
	err := db.Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&consultations).Error
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

func (r *consultationRepository) FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) ([]entity.Consultation, error) {
	var consultations []entity.Consultation
	err := db.Where("appointment_id = ?", appointmentID).
		Order("created_at DESC").
		Find(&consultations).Error
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

func (r *consultationRepository) Update(db *gorm.DB, consultation *entity.Consultation) error {
	return db.Omit("Appointment").Save(consultation).Error
}

func (r *consultationRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Consultation{})
	return result.RowsAffected, result.Error
}
