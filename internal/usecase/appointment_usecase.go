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
	ErrAppointmentNotFound         = errors.New("appointment not found")
	ErrAppointmentAlreadyCancelled = errors.New("appointment is already cancelled")
	ErrNotAppointmentOwner         = errors.New("appointment belongs to another patient")
)

type AppointmentUsecase interface {
	GetMyAppointments(ctx context.Context, patientID uuid.UUID) ([]dto.AppointmentResponse, error)
	GetByID(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	// Cancel cancels a scheduled appointment and feeds the freed slot back
	// into waiting-list matching. actorPatientID uuid.Nil skips the
	// ownership check (staff).
	Cancel(ctx context.Context, appointmentID, actorPatientID uuid.UUID) (*dto.InvitationResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	lifecycle       service.InvitationLifecycle
	audit           *service.AuditService
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	lifecycle service.InvitationLifecycle,
	audit *service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		lifecycle:       lifecycle,
		audit:           audit,
	}
}

func (u *appointmentUsecase) GetMyAppointments(ctx context.Context, patientID uuid.UUID) ([]dto.AppointmentResponse, error) {
	appointments, err := u.appointmentRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to list appointments for patient %s: %+v", patientID, err)
		return nil, err
	}
	return converter.AppointmentsToResponse(appointments), nil
}

func (u *appointmentUsecase) GetByID(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) Cancel(ctx context.Context, appointmentID, actorPatientID uuid.UUID) (*dto.InvitationResponse, error) {
	db := u.db.WithContext(ctx)

	appointment, err := u.appointmentRepo.FindByID(db, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if actorPatientID != uuid.Nil && appointment.PatientID != actorPatientID {
		return nil, ErrNotAppointmentOwner
	}

	rows, err := u.appointmentRepo.Cancel(db, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrAppointmentAlreadyCancelled
	}

	var actor *uuid.UUID
	if actorPatientID != uuid.Nil {
		actor = &actorPatientID
	}
	u.audit.Record(ctx, actor, entity.AuditActionAppointmentCancel, entity.JSON{
		"appointment_id": appointmentID.String(),
	})

	// The freed slot goes straight back into matching. A matching failure
	// is logged, not returned: the cancellation itself already succeeded.
	invitation, err := u.lifecycle.OnSlotFreed(ctx, appointment.Slot(entity.SlotFreedReasonCancellation))
	if err != nil {
		u.log.Warnf("Failed to re-offer slot from cancelled appointment %s: %+v", appointmentID, err)
		return nil, nil
	}

	return converter.InvitationToResponse(invitation), nil
}
