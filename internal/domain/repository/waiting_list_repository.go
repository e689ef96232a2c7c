package repository

import (
	"clinic-appointment-manager/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WaitingListRepository persists waiting-list entries. All status changes go
// through the conditional transition methods: they guard on the expected
// current status and report the number of rows touched, so a losing
// concurrent caller observes 0 instead of silently overwriting state.
type WaitingListRepository interface {
	Create(db *gorm.DB, entry *entity.WaitingListEntry) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.WaitingListEntry, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.WaitingListEntry, error)
	FindWaitingByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.WaitingListEntry, error)
	FindWaitingByType(db *gorm.DB, appointmentType string) ([]entity.WaitingListEntry, error)
	FindByStatus(db *gorm.DB, status entity.WaitingListStatus) ([]entity.WaitingListEntry, error)

	// MarkContacted moves waiting -> contacted and stamps last_contact_date
	MarkContacted(db *gorm.DB, id uuid.UUID) (int64, error)
	// MarkScheduled moves contacted -> scheduled
	MarkScheduled(db *gorm.DB, id uuid.UUID) (int64, error)
	// RevertToWaiting moves contacted -> waiting after a failed invitation,
	// optionally counting the contact attempt
	RevertToWaiting(db *gorm.DB, id uuid.UUID, countAttempt bool) (int64, error)
	// MarkRemoved moves waiting|contacted -> removed
	MarkRemoved(db *gorm.DB, id uuid.UUID) (int64, error)
}
