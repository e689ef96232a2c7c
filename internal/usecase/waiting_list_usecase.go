package usecase

import (
	"context"
	"errors"

	"clinic-appointment-manager/internal/converter"
	"clinic-appointment-manager/internal/delivery/dto"
	"clinic-appointment-manager/internal/domain/entity"
	"clinic-appointment-manager/internal/domain/repository"
	"clinic-appointment-manager/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrAlreadyOnWaitingList enforces one waiting entry per patient
	ErrAlreadyOnWaitingList = errors.New("patient already has a waiting entry")

	// ErrUnknownAppointmentType is returned when the requested type has no
	// active clinic service behind it
	ErrUnknownAppointmentType = errors.New("unknown or inactive appointment type")

	// ErrNotEntryOwner is returned when a patient touches another patient's
	// waiting-list entry
	ErrNotEntryOwner = errors.New("waiting list entry belongs to another patient")

	// ErrEntryNotRemovable is returned when the entry already left the list
	ErrEntryNotRemovable = errors.New("waiting list entry cannot be withdrawn in its current status")
)

type WaitingListUsecase interface {
	// Enroll puts a patient on the waiting list. One waiting entry per
	// patient at a time.
	Enroll(ctx context.Context, patientID uuid.UUID, req *dto.EnrollWaitingListRequest) (*dto.WaitingListEntryResponse, error)
	GetMyEntries(ctx context.Context, patientID uuid.UUID) ([]dto.WaitingListEntryResponse, error)
	// GetAllEntries lists entries for staff, optionally filtered by status
	GetAllEntries(ctx context.Context, status string) ([]dto.WaitingListEntryResponse, error)
	// Withdraw removes an entry and declines its active invitation if one is
	// out. actorPatientID uuid.Nil skips the ownership check (staff).
	Withdraw(ctx context.Context, entryID, actorPatientID uuid.UUID) error
}

type waitingListUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	entryRepo      repository.WaitingListRepository
	invitationRepo repository.InvitationRepository
	serviceRepo    repository.ClinicServiceRepository
	lifecycle      service.InvitationLifecycle
	audit          *service.AuditService
}

func NewWaitingListUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	entryRepo repository.WaitingListRepository,
	invitationRepo repository.InvitationRepository,
	serviceRepo repository.ClinicServiceRepository,
	lifecycle service.InvitationLifecycle,
	audit *service.AuditService,
) WaitingListUsecase {
	return &waitingListUsecase{
		db:             db,
		log:            log,
		entryRepo:      entryRepo,
		invitationRepo: invitationRepo,
		serviceRepo:    serviceRepo,
		lifecycle:      lifecycle,
		audit:          audit,
	}
}

func (u *waitingListUsecase) Enroll(ctx context.Context, patientID uuid.UUID, req *dto.EnrollWaitingListRequest) (*dto.WaitingListEntryResponse, error) {
	db := u.db.WithContext(ctx)

	svc, err := u.serviceRepo.FindByCode(db, req.AppointmentType)
	if err != nil {
		u.log.Warnf("Failed to look up service %s: %+v", req.AppointmentType, err)
		return nil, err
	}
	if svc == nil || (svc.IsActive != nil && !*svc.IsActive) {
		return nil, ErrUnknownAppointmentType
	}

	existing, err := u.entryRepo.FindWaitingByPatientID(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to check existing entry for patient %s: %+v", patientID, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyOnWaitingList
	}

	priority := entity.Priority(req.Priority)
	if !priority.IsValid() {
		priority = entity.PriorityMedium
	}

	entry := &entity.WaitingListEntry{
		PatientID:       patientID,
		AppointmentType: req.AppointmentType,
		PreferredDates:  entity.StringList(req.PreferredDates),
		PreferredTimes:  entity.StringList(req.PreferredTimes),
		Priority:        priority,
		Status:          entity.WaitingListStatusWaiting,
	}

	if err := u.entryRepo.Create(db, entry); err != nil {
		// Partial unique index backs the one-waiting-entry rule against
		// concurrent enrolls
		if isDuplicateKeyError(err, "waiting") {
			return nil, ErrAlreadyOnWaitingList
		}
		u.log.Warnf("Failed to create waiting list entry: %+v", err)
		return nil, err
	}

	u.audit.Record(ctx, &patientID, entity.AuditActionWaitlistEnroll, entity.JSON{
		"entry_id":         entry.ID.String(),
		"appointment_type": entry.AppointmentType,
		"priority":         string(entry.Priority),
	})

	return converter.WaitingListEntryToResponse(entry), nil
}

func (u *waitingListUsecase) GetMyEntries(ctx context.Context, patientID uuid.UUID) ([]dto.WaitingListEntryResponse, error) {
	entries, err := u.entryRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to list entries for patient %s: %+v", patientID, err)
		return nil, err
	}
	return converter.WaitingListEntriesToResponse(entries), nil
}

func (u *waitingListUsecase) GetAllEntries(ctx context.Context, status string) ([]dto.WaitingListEntryResponse, error) {
	db := u.db.WithContext(ctx)

	var entries []entity.WaitingListEntry
	var err error
	if status == "" {
		entries, err = u.entryRepo.FindByStatus(db, entity.WaitingListStatusWaiting)
	} else {
		entries, err = u.entryRepo.FindByStatus(db, entity.WaitingListStatus(status))
	}
	if err != nil {
		u.log.Warnf("Failed to list waiting list entries: %+v", err)
		return nil, err
	}
	return converter.WaitingListEntriesToResponse(entries), nil
}

func (u *waitingListUsecase) Withdraw(ctx context.Context, entryID, actorPatientID uuid.UUID) error {
	db := u.db.WithContext(ctx)

	entry, err := u.entryRepo.FindByID(db, entryID)
	if err != nil {
		u.log.Warnf("Failed to find entry %s: %+v", entryID, err)
		return err
	}
	if entry == nil {
		return service.ErrEntryNotFound
	}
	if actorPatientID != uuid.Nil && entry.PatientID != actorPatientID {
		return ErrNotEntryOwner
	}

	rows, err := u.entryRepo.MarkRemoved(db, entryID)
	if err != nil {
		u.log.Warnf("Failed to remove entry %s: %+v", entryID, err)
		return err
	}
	if rows == 0 {
		return ErrEntryNotRemovable
	}

	// An invitation that is out for this entry is declined so the slot goes
	// back into matching. The entry is already removed, so the cascade will
	// not re-offer to it.
	active, err := u.invitationRepo.FindActiveByEntryID(db, entryID)
	if err != nil {
		u.log.Warnf("Failed to check active invitation for entry %s: %+v", entryID, err)
	} else if active != nil {
		if _, err := u.lifecycle.Decline(ctx, active.ID, uuid.Nil, "entry_withdrawn"); err != nil {
			u.log.Warnf("Failed to decline invitation %s for withdrawn entry: %+v", active.ID, err)
		}
	}

	var actor *uuid.UUID
	if actorPatientID != uuid.Nil {
		actor = &actorPatientID
	}
	u.audit.Record(ctx, actor, entity.AuditActionWaitlistRemove, entity.JSON{
		"entry_id": entryID.String(),
	})

	return nil
}
