package repository

import (
	"errors"
	"time"

	"clinic-appointment-manager/internal/domain/entity"
	domainRepo "clinic-appointment-manager/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type invitationRepository struct{}

func NewInvitationRepository() domainRepo.InvitationRepository {
	return &invitationRepository{}
}

func (r *invitationRepository) Create(db *gorm.DB, invitation *entity.Invitation) error {
	return db.Create(invitation).Error
}

func (r *invitationRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Invitation, error) {
	var invitation entity.Invitation
	err := db.Where("id = ?", id).First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Invitation, error) {
	var invitations []entity.Invitation
	err := db.Where("patient_id = ?", patientID).
		Order("sent_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *invitationRepository) FindActiveBySlot(db *gorm.DB, date time.Time, startTime, appointmentType string) (*entity.Invitation, error) {
	var invitation entity.Invitation
	err := db.Where(
		"slot_date = ? AND slot_start_time = ? AND appointment_type = ? AND status IN ?",
		date.Format("2006-01-02"), startTime, appointmentType, entity.ActiveInvitationStatuses,
	).First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) FindActiveByEntryID(db *gorm.DB, entryID uuid.UUID) (*entity.Invitation, error) {
	var invitation entity.Invitation
	err := db.Where("waiting_list_entry_id = ? AND status IN ?", entryID, entity.ActiveInvitationStatuses).
		First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) FindAllActive(db *gorm.DB) ([]entity.Invitation, error) {
	var invitations []entity.Invitation
	err := db.Where("status IN ?", entity.ActiveInvitationStatuses).
		Order("confirmation_deadline ASC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

// MarkViewed atomically moves sent -> viewed.
// Returns affected rows: 0 means the invitation already advanced or closed.
func (r *invitationRepository) MarkViewed(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.Invitation{}).
		Where("id = ? AND status = ?", id, entity.InvitationStatusSent).
		Updates(map[string]interface{}{
			"status":    entity.InvitationStatusViewed,
			"viewed_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// MarkAccepted atomically moves sent|viewed -> accepted
func (r *invitationRepository) MarkAccepted(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.Invitation{}).
		Where("id = ? AND status IN ?", id, []entity.InvitationStatus{
			entity.InvitationStatusSent,
			entity.InvitationStatusViewed,
		}).
		Updates(map[string]interface{}{
			"status":      entity.InvitationStatusAccepted,
			"accepted_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// MarkPaymentPending atomically moves accepted -> payment_pending
func (r *invitationRepository) MarkPaymentPending(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.Invitation{}).
		Where("id = ? AND status = ?", id, entity.InvitationStatusAccepted).
		Update("status", entity.InvitationStatusPaymentPending)
	return result.RowsAffected, result.Error
}

// Confirm atomically moves accepted|payment_pending -> confirmed
func (r *invitationRepository) Confirm(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.Invitation{}).
		Where("id = ? AND status IN ?", id, []entity.InvitationStatus{
			entity.InvitationStatusAccepted,
			entity.InvitationStatusPaymentPending,
		}).
		Updates(map[string]interface{}{
			"status":               entity.InvitationStatusConfirmed,
			"payment_confirmed_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// Terminate atomically moves any non-terminal status -> declined|expired.
// Returns affected rows: 0 means a concurrent transition won (e.g. the
// patient confirmed in the same window the expiry sweep fired).
func (r *invitationRepository) Terminate(db *gorm.DB, id uuid.UUID, to entity.InvitationStatus, reason string) (int64, error) {
	result := db.Model(&entity.Invitation{}).
		Where("id = ? AND status IN ?", id, entity.ActiveInvitationStatuses).
		Updates(map[string]interface{}{
			"status":         to,
			"decline_reason": reason,
		})
	return result.RowsAffected, result.Error
}
