package repository

import (
	"errors"
	"time"

	"clinic-appointment-manager/internal/domain/entity"
	domainRepo "clinic-appointment-manager/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type waitingListRepository struct{}

func NewWaitingListRepository() domainRepo.WaitingListRepository {
	return &waitingListRepository{}
}

func (r *waitingListRepository) Create(db *gorm.DB, entry *entity.WaitingListEntry) error {
	return db.Create(entry).Error
}

func (r *waitingListRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.WaitingListEntry, error) {
	var entry entity.WaitingListEntry
	err := db.Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *waitingListRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.WaitingListEntry, error) {
	var entries []entity.WaitingListEntry
	err := db.Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *waitingListRepository) FindWaitingByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.WaitingListEntry, error) {
	var entry entity.WaitingListEntry
	err := db.Where("patient_id = ? AND status = ?", patientID, entity.WaitingListStatusWaiting).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *waitingListRepository) FindWaitingByType(db *gorm.DB, appointmentType string) ([]entity.WaitingListEntry, error) {
	var entries []entity.WaitingListEntry
	err := db.Where("appointment_type = ? AND status = ?", appointmentType, entity.WaitingListStatusWaiting).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *waitingListRepository) FindByStatus(db *gorm.DB, status entity.WaitingListStatus) ([]entity.WaitingListEntry, error) {
	var entries []entity.WaitingListEntry
	err := db.Where("status = ?", status).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// MarkContacted atomically moves waiting -> contacted.
// Returns affected rows: 0 means the entry was no longer waiting.
func (r *waitingListRepository) MarkContacted(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.WaitingListEntry{}).
		Where("id = ? AND status = ?", id, entity.WaitingListStatusWaiting).
		Updates(map[string]interface{}{
			"status":            entity.WaitingListStatusContacted,
			"last_contact_date": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// MarkScheduled atomically moves contacted -> scheduled
func (r *waitingListRepository) MarkScheduled(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.WaitingListEntry{}).
		Where("id = ? AND status = ?", id, entity.WaitingListStatusContacted).
		Update("status", entity.WaitingListStatusScheduled)
	return result.RowsAffected, result.Error
}

// RevertToWaiting atomically moves contacted -> waiting so the entry is
// eligible for the next freed slot. countAttempt additionally increments
// contact_attempts (expiry counts as a failed contact, decline does not).
func (r *waitingListRepository) RevertToWaiting(db *gorm.DB, id uuid.UUID, countAttempt bool) (int64, error) {
	updates := map[string]interface{}{
		"status": entity.WaitingListStatusWaiting,
	}
	if countAttempt {
		updates["contact_attempts"] = gorm.Expr("contact_attempts + 1")
	}
	result := db.Model(&entity.WaitingListEntry{}).
		Where("id = ? AND status = ?", id, entity.WaitingListStatusContacted).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// MarkRemoved atomically moves waiting|contacted -> removed
func (r *waitingListRepository) MarkRemoved(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.WaitingListEntry{}).
		Where("id = ? AND status IN ?", id, []entity.WaitingListStatus{
			entity.WaitingListStatusWaiting,
			entity.WaitingListStatusContacted,
		}).
		Update("status", entity.WaitingListStatusRemoved)
	return result.RowsAffected, result.Error
}
