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

var ErrProfileNotFound = errors.New("patient profile not found")

type PatientProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*dto.PatientProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdatePatientProfileRequest) (*dto.PatientProfileResponse, error)
}

type patientProfileUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	profileRepo repository.PatientProfileRepository
	audit       *service.AuditService
}

func NewPatientProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	profileRepo repository.PatientProfileRepository,
	audit *service.AuditService,
) PatientProfileUsecase {
	return &patientProfileUsecase{
		db:          db,
		log:         log,
		profileRepo: profileRepo,
		audit:       audit,
	}
}

func (u *patientProfileUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.PatientProfileResponse, error) {
	profile, err := u.profileRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return converter.PatientProfileToResponse(profile), nil
}

func (u *patientProfileUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdatePatientProfileRequest) (*dto.PatientProfileResponse, error) {
	db := u.db.WithContext(ctx)

	profile, err := u.profileRepo.FindByUserID(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	if req.PhoneNumber != "" {
		profile.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		profile.Address = req.Address
	}

	if err := u.profileRepo.Update(db, profile); err != nil {
		u.log.Warnf("Failed to update patient profile: %+v", err)
		return nil, err
	}

	u.audit.Record(ctx, &userID, entity.AuditActionProfileUpdate, nil)
	return converter.PatientProfileToResponse(profile), nil
}
