package repository

import (
	"time"

	"clinic-appointment-manager/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvitationRepository persists invitations. Every transition method is a
// conditional update guarded on the expected current status; RowsAffected 0
// means the caller lost a race (patient response vs expiry sweep) and must
// re-read instead of assuming the transition happened.
type InvitationRepository interface {
	Create(db *gorm.DB, invitation *entity.Invitation) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Invitation, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Invitation, error)
	// FindActiveBySlot returns the single non-terminal invitation for a
	// physical slot, if any
	FindActiveBySlot(db *gorm.DB, date time.Time, startTime, appointmentType string) (*entity.Invitation, error)
	// FindActiveByEntryID returns the single non-terminal invitation linked
	// to a waiting-list entry, if any
	FindActiveByEntryID(db *gorm.DB, entryID uuid.UUID) (*entity.Invitation, error)
	// FindAllActive returns every non-terminal invitation, used by the
	// deadline monitor to rebuild its registry on startup
	FindAllActive(db *gorm.DB) ([]entity.Invitation, error)

	// MarkViewed moves sent -> viewed
	MarkViewed(db *gorm.DB, id uuid.UUID) (int64, error)
	// MarkAccepted moves sent|viewed -> accepted
	MarkAccepted(db *gorm.DB, id uuid.UUID) (int64, error)
	// MarkPaymentPending moves accepted -> payment_pending
	MarkPaymentPending(db *gorm.DB, id uuid.UUID) (int64, error)
	// Confirm moves accepted|payment_pending -> confirmed
	Confirm(db *gorm.DB, id uuid.UUID) (int64, error)
	// Terminate moves any non-terminal status -> declined|expired with a reason
	Terminate(db *gorm.DB, id uuid.UUID, to entity.InvitationStatus, reason string) (int64, error)
}
