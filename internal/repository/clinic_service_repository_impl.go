package repository

import (
	"errors"

	"clinic-appointment-manager/internal/domain/entity"
	domainRepo "clinic-appointment-manager/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type clinicServiceRepository struct{}

func NewClinicServiceRepository() domainRepo.ClinicServiceRepository {
	return &clinicServiceRepository{}
}

func (r *clinicServiceRepository) Create(db *gorm.DB, service *entity.ClinicService) error {
	return db.Create(service).Error
}

func (r *clinicServiceRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.ClinicService, error) {
	var service entity.ClinicService
	err := db.Where("id = ?", id).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

func (r *clinicServiceRepository) FindByCode(db *gorm.DB, code string) (*entity.ClinicService, error) {
	var service entity.ClinicService
	err := db.Where("code = ?", code).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

func (r *clinicServiceRepository) FindAll(db *gorm.DB, activeOnly bool) ([]entity.ClinicService, error) {
	var services []entity.ClinicService
	query := db.Order("code ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *clinicServiceRepository) Update(db *gorm.DB, service *entity.ClinicService) error {
	return db.Save(service).Error
}

func (r *clinicServiceRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.ClinicService{})
	return result.RowsAffected, result.Error
}
