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
	ErrConsultationNotFound   = errors.New("consultation not found")
	ErrAppointmentNotEligible = errors.New("consultation requires a scheduled appointment")
)

type ConsultationUsecase interface {
	Create(ctx context.Context, staffID uuid.UUID, req *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]dto.ConsultationResponse, error)
	Update(ctx context.Context, staffID, id uuid.UUID, req *dto.UpdateConsultationRequest) (*dto.ConsultationResponse, error)
}

type consultationUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	consultationRepo repository.ConsultationRepository
	appointmentRepo  repository.AppointmentRepository
	audit            *service.AuditService
}

func NewConsultationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	consultationRepo repository.ConsultationRepository,
	appointmentRepo repository.AppointmentRepository,
	audit *service.AuditService,
) ConsultationUsecase {
	return &consultationUsecase{
		db:               db,
		log:              log,
		consultationRepo: consultationRepo,
		appointmentRepo:  appointmentRepo,
		audit:            audit,
	}
}

func (u *consultationUsecase) Create(ctx context.Context, staffID uuid.UUID, req *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error) {
	db := u.db.WithContext(ctx)

	appointment, err := u.appointmentRepo.FindByID(db, req.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", req.AppointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.IsCancelled() {
		return nil, ErrAppointmentNotEligible
	}

	consultation := &entity.Consultation{
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		StaffID:       staffID,
		Diagnosis:     req.Diagnosis,
		Notes:         req.Notes,
	}

	if err := u.consultationRepo.Create(db, consultation); err != nil {
		u.log.Warnf("Failed to create consultation: %+v", err)
		return nil, err
	}

	u.audit.Record(ctx, &staffID, entity.AuditActionConsultationCreate, entity.JSON{
		"consultation_id": consultation.ID.String(),
		"appointment_id":  appointment.ID.String(),
	})

	return converter.ConsultationToResponse(consultation), nil
}

func (u *consultationUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error) {
	consultation, err := u.consultationRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", id, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}
	return converter.ConsultationToResponse(consultation), nil
}

func (u *consultationUsecase) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]dto.ConsultationResponse, error) {
	consultations, err := u.consultationRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to list consultations for patient %s: %+v", patientID, err)
		return nil, err
	}
	return converter.ConsultationsToResponse(consultations), nil
}

func (u *consultationUsecase) Update(ctx context.Context, staffID, id uuid.UUID, req *dto.UpdateConsultationRequest) (*dto.ConsultationResponse, error) {
	db := u.db.WithContext(ctx)

	consultation, err := u.consultationRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", id, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}

	if req.Diagnosis != "" {
		consultation.Diagnosis = req.Diagnosis
	}
	if req.Notes != "" {
		consultation.Notes = req.Notes
	}

	if err := u.consultationRepo.Update(db, consultation); err != nil {
		u.log.Warnf("Failed to update consultation %s: %+v", id, err)
		return nil, err
	}

	return converter.ConsultationToResponse(consultation), nil
}
